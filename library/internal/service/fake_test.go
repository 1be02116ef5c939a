package service

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-circulation/library/internal/repository"
)

type state struct {
	categories map[int64]model.ReaderCategory
	readers    map[int64]model.Reader
	publishers map[int64]model.Publisher
	books      map[int64]model.Book
	copies     map[int64]model.BookCopy
	users      map[int64]model.User
	borrows    map[int64]model.BorrowRecord
	fines      map[int64]model.FineRecord
	payments   map[int64]model.PaymentRecord
}

func (s state) clone() state {
	return state{
		categories: maps.Clone(s.categories),
		readers:    maps.Clone(s.readers),
		publishers: maps.Clone(s.publishers),
		books:      maps.Clone(s.books),
		copies:     maps.Clone(s.copies),
		users:      maps.Clone(s.users),
		borrows:    maps.Clone(s.borrows),
		fines:      maps.Clone(s.fines),
		payments:   maps.Clone(s.payments),
	}
}

// fakeRepo is an in-memory Repository. InTx restores the previous state when fn fails.
type fakeRepo struct {
	state
	seq    int64
	failOn map[string]error
}

var _ libraryRepo.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		state: state{
			categories: map[int64]model.ReaderCategory{},
			readers:    map[int64]model.Reader{},
			publishers: map[int64]model.Publisher{},
			books:      map[int64]model.Book{},
			copies:     map[int64]model.BookCopy{},
			users:      map[int64]model.User{},
			borrows:    map[int64]model.BorrowRecord{},
			fines:      map[int64]model.FineRecord{},
			payments:   map[int64]model.PaymentRecord{},
		},
		failOn: map[string]error{},
	}
}

func (f *fakeRepo) next() int64 {
	f.seq++
	return f.seq
}

func (f *fakeRepo) fail(op string) error {
	return f.failOn[op]
}

func (f *fakeRepo) InTx(_ context.Context, fn func(tx libraryRepo.Tx) error) error {
	snapshot := f.state.clone()
	if err := fn(f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func duplicate(msg string) error {
	return errs.Conflict(errs.CodeDuplicate, msg)
}

func sorted[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (f *fakeRepo) ListCategories(context.Context) ([]model.ReaderCategory, error) {
	return sorted(f.categories, nil), nil
}

func (f *fakeRepo) GetCategory(_ context.Context, id int64) (model.ReaderCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return c, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, req model.CategoryRequest) (model.ReaderCategory, error) {
	for _, c := range f.categories {
		if c.Name == req.Name {
			return model.ReaderCategory{}, duplicate("category name already exists")
		}
	}
	c := model.ReaderCategory{
		ID: f.next(), Name: req.Name, MaxBorrowCount: req.MaxBorrowCount,
		MaxBorrowDays: req.MaxBorrowDays, FinePerDay: req.FinePerDay,
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeRepo) UpdateCategory(_ context.Context, id int64, req model.CategoryRequest) (model.ReaderCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return c, errs.ErrNotFound
	}
	c.Name, c.MaxBorrowCount, c.MaxBorrowDays, c.FinePerDay = req.Name, req.MaxBorrowCount, req.MaxBorrowDays, req.FinePerDay
	f.categories[id] = c
	return c, nil
}

func (f *fakeRepo) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := f.categories[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeRepo) CategoryInUse(_ context.Context, id int64) (bool, error) {
	for _, r := range f.readers {
		if r.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListPublishers(context.Context) ([]model.Publisher, error) {
	return sorted(f.publishers, nil), nil
}

func (f *fakeRepo) GetPublisher(_ context.Context, id int64) (model.Publisher, error) {
	p, ok := f.publishers[id]
	if !ok {
		return p, errs.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) CreatePublisher(_ context.Context, req model.PublisherRequest) (model.Publisher, error) {
	p := model.Publisher{ID: f.next(), Name: req.Name, Contact: req.Contact, Phone: req.Phone, Address: req.Address}
	f.publishers[p.ID] = p
	return p, nil
}

func (f *fakeRepo) UpdatePublisher(_ context.Context, id int64, req model.PublisherRequest) (model.Publisher, error) {
	p, ok := f.publishers[id]
	if !ok {
		return p, errs.ErrNotFound
	}
	p.Name, p.Contact, p.Phone, p.Address = req.Name, req.Contact, req.Phone, req.Address
	f.publishers[id] = p
	return p, nil
}

func (f *fakeRepo) DeletePublisher(_ context.Context, id int64) error {
	if _, ok := f.publishers[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.publishers, id)
	for bid, b := range f.books {
		if b.PublisherID != nil && *b.PublisherID == id {
			b.PublisherID = nil
			f.books[bid] = b
		}
	}
	return nil
}

func (f *fakeRepo) withPublisher(b model.Book) model.Book {
	b.PublisherName = nil
	if b.PublisherID != nil {
		if p, ok := f.publishers[*b.PublisherID]; ok {
			name := p.Name
			b.PublisherName = &name
		}
	}
	return b
}

func (f *fakeRepo) ListBooks(context.Context) ([]model.Book, error) {
	books := sorted(f.books, nil)
	for i := range books {
		books[i] = f.withPublisher(books[i])
	}
	return books, nil
}

func (f *fakeRepo) GetBook(_ context.Context, id int64) (model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return b, errs.ErrNotFound
	}
	return f.withPublisher(b), nil
}

func (f *fakeRepo) BookForUpdate(ctx context.Context, id int64) (model.Book, error) {
	return f.GetBook(ctx, id)
}

func applyBook(b model.Book, req model.BookRequest) model.Book {
	b.ISBN, b.Title, b.Subtitle, b.PublisherID = req.ISBN, req.Title, req.Subtitle, req.PublisherID
	b.PublishDate, b.Category, b.Language, b.Price, b.Summary = req.PublishDate, req.Category, req.Language, req.Price, req.Summary
	return b
}

func (f *fakeRepo) CreateBook(_ context.Context, req model.BookRequest) (model.Book, error) {
	if req.ISBN != nil {
		for _, b := range f.books {
			if b.ISBN != nil && *b.ISBN == *req.ISBN {
				return model.Book{}, duplicate("isbn already exists")
			}
		}
	}
	b := applyBook(model.Book{ID: f.next()}, req)
	f.books[b.ID] = b
	return f.withPublisher(b), nil
}

func (f *fakeRepo) UpdateBook(_ context.Context, id int64, req model.BookRequest) (model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return b, errs.ErrNotFound
	}
	b = applyBook(b, req)
	f.books[id] = b
	return f.withPublisher(b), nil
}

func (f *fakeRepo) DeleteBook(_ context.Context, id int64) error {
	if _, ok := f.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeRepo) SetBookCounters(_ context.Context, id int64, total, available int) error {
	if err := f.fail("SetBookCounters"); err != nil {
		return err
	}
	b, ok := f.books[id]
	if !ok {
		return errs.ErrNotFound
	}
	if total < 0 || available < 0 || available > total {
		return errs.Consistency(errs.CodeInconsistentData, "books counters check violated")
	}
	b.TotalCopies, b.AvailableCopies = total, available
	f.books[id] = b
	return nil
}

func (f *fakeRepo) CountCopies(_ context.Context, bookID int64) (int, error) {
	return len(sorted(f.copies, func(c model.BookCopy) bool { return c.BookID == bookID })), nil
}

func (f *fakeRepo) ListCopies(_ context.Context, bookID *int64) ([]model.BookCopy, error) {
	return sorted(f.copies, func(c model.BookCopy) bool { return bookID == nil || c.BookID == *bookID }), nil
}

func (f *fakeRepo) GetCopy(_ context.Context, id int64) (model.BookCopy, error) {
	c, ok := f.copies[id]
	if !ok {
		return c, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) CopyForUpdate(ctx context.Context, id int64) (model.BookCopy, error) {
	return f.GetCopy(ctx, id)
}

func (f *fakeRepo) barcodeTaken(barcode string, except int64) bool {
	for _, c := range f.copies {
		if c.Barcode == barcode && c.ID != except {
			return true
		}
	}
	return false
}

func (f *fakeRepo) CreateCopy(_ context.Context, req model.CopyRequest) (model.BookCopy, error) {
	if f.barcodeTaken(req.Barcode, 0) {
		return model.BookCopy{}, duplicate("barcode already exists")
	}
	c := model.BookCopy{ID: f.next(), BookID: req.BookID, Barcode: req.Barcode, Location: req.Location, Status: req.Status}
	f.copies[c.ID] = c
	return c, nil
}

func (f *fakeRepo) UpdateCopy(_ context.Context, id int64, req model.CopyRequest) (model.BookCopy, error) {
	c, ok := f.copies[id]
	if !ok {
		return c, errs.ErrNotFound
	}
	if f.barcodeTaken(req.Barcode, id) {
		return model.BookCopy{}, duplicate("barcode already exists")
	}
	c.BookID, c.Barcode, c.Location, c.Status = req.BookID, req.Barcode, req.Location, req.Status
	f.copies[id] = c
	return c, nil
}

func (f *fakeRepo) SetCopyStatus(_ context.Context, id int64, status model.CopyStatus) error {
	c, ok := f.copies[id]
	if !ok {
		return errs.ErrNotFound
	}
	c.Status = status
	f.copies[id] = c
	return nil
}

func (f *fakeRepo) DeleteCopy(_ context.Context, id int64) error {
	if _, ok := f.copies[id]; !ok {
		return errs.ErrNotFound
	}
	for _, b := range f.borrows {
		if b.CopyID == id {
			return errs.Conflict(errs.CodeReferenced, "copy is referenced by borrow records")
		}
	}
	delete(f.copies, id)
	return nil
}

func (f *fakeRepo) ListReaders(context.Context) ([]model.Reader, error) {
	return sorted(f.readers, nil), nil
}

func (f *fakeRepo) GetReader(_ context.Context, id int64) (model.Reader, error) {
	r, ok := f.readers[id]
	if !ok {
		return r, errs.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ReaderForUpdate(ctx context.Context, id int64) (model.Reader, error) {
	return f.GetReader(ctx, id)
}

func (f *fakeRepo) CreateReader(_ context.Context, r model.Reader) (model.Reader, error) {
	for _, o := range f.readers {
		if o.ReaderNo == r.ReaderNo {
			return model.Reader{}, duplicate("reader_no already exists")
		}
	}
	r.ID = f.next()
	r.FineBalance, r.FineTotalHistory = decimal.Zero, decimal.Zero
	f.readers[r.ID] = r
	return r, nil
}

func (f *fakeRepo) UpdateReader(_ context.Context, id int64, upd model.ReaderUpdate) (model.Reader, error) {
	r, ok := f.readers[id]
	if !ok {
		return r, errs.ErrNotFound
	}
	if upd.CategoryID != nil {
		r.CategoryID = *upd.CategoryID
	}
	if upd.Name != nil {
		r.Name = *upd.Name
	}
	if upd.Gender != nil {
		r.Gender = *upd.Gender
	}
	if upd.Phone != nil {
		r.Phone = upd.Phone
	}
	if upd.Email != nil {
		r.Email = upd.Email
	}
	if upd.Address != nil {
		r.Address = upd.Address
	}
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	f.readers[id] = r
	return r, nil
}

func (f *fakeRepo) SetReaderCounters(_ context.Context, r model.Reader) error {
	if err := f.fail("SetReaderCounters"); err != nil {
		return err
	}
	cur, ok := f.readers[r.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.BorrowedCount, cur.FineBalance, cur.FineTotalHistory = r.BorrowedCount, r.FineBalance, r.FineTotalHistory
	f.readers[r.ID] = cur
	return nil
}

func (f *fakeRepo) DeleteReader(_ context.Context, id int64) error {
	if _, ok := f.readers[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.readers, id)
	return nil
}

func (f *fakeRepo) OpenBorrowCount(_ context.Context, readerID int64) (int, error) {
	return len(sorted(f.borrows, func(b model.BorrowRecord) bool {
		return b.ReaderID == readerID && b.Status == model.BorrowBorrowed
	})), nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeRepo) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if err := f.fail("CreateUser"); err != nil {
		return model.User{}, err
	}
	if _, err := f.GetUserByUsername(ctx, u.Username); err == nil {
		return model.User{}, duplicate("username already exists")
	}
	u.ID = f.next()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeRepo) DeleteReaderUsers(_ context.Context, readerID int64) error {
	for id, u := range f.users {
		if u.ReaderID != nil && *u.ReaderID == readerID {
			delete(f.users, id)
		}
	}
	return nil
}

func (f *fakeRepo) ListBorrows(_ context.Context, fl model.ListFilter) ([]model.BorrowRecord, error) {
	return sorted(f.borrows, func(b model.BorrowRecord) bool {
		return (fl.ReaderID == nil || b.ReaderID == *fl.ReaderID) && (fl.Status == "" || string(b.Status) == fl.Status)
	}), nil
}

func (f *fakeRepo) CreateBorrow(_ context.Context, b model.BorrowRecord) (model.BorrowRecord, error) {
	b.ID = f.next()
	f.borrows[b.ID] = b
	return b, nil
}

func (f *fakeRepo) BorrowForUpdate(_ context.Context, id int64) (model.BorrowRecord, error) {
	b, ok := f.borrows[id]
	if !ok {
		return b, errs.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) SaveBorrow(_ context.Context, b model.BorrowRecord) error {
	if err := f.fail("SaveBorrow"); err != nil {
		return err
	}
	if _, ok := f.borrows[b.ID]; !ok {
		return errs.ErrNotFound
	}
	f.borrows[b.ID] = b
	return nil
}

func (f *fakeRepo) ListFines(_ context.Context, fl model.ListFilter) ([]model.FineRecord, error) {
	return sorted(f.fines, func(r model.FineRecord) bool {
		return (fl.ReaderID == nil || r.ReaderID == *fl.ReaderID) && (fl.Status == "" || string(r.Status) == fl.Status)
	}), nil
}

func (f *fakeRepo) CreateFine(_ context.Context, r model.FineRecord) (model.FineRecord, error) {
	r.ID = f.next()
	f.fines[r.ID] = r
	return r, nil
}

func (f *fakeRepo) FineForUpdate(_ context.Context, id int64) (model.FineRecord, error) {
	r, ok := f.fines[id]
	if !ok {
		return r, errs.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) SaveFine(_ context.Context, r model.FineRecord) error {
	if _, ok := f.fines[r.ID]; !ok {
		return errs.ErrNotFound
	}
	f.fines[r.ID] = r
	return nil
}

func (f *fakeRepo) ListPayments(_ context.Context, fl model.ListFilter) ([]model.PaymentRecord, error) {
	return sorted(f.payments, func(p model.PaymentRecord) bool {
		return fl.ReaderID == nil || p.ReaderID == *fl.ReaderID
	}), nil
}

func (f *fakeRepo) CreatePayment(_ context.Context, p model.PaymentRecord) (model.PaymentRecord, error) {
	if err := f.fail("CreatePayment"); err != nil {
		return model.PaymentRecord{}, err
	}
	p.ID = f.next()
	f.payments[p.ID] = p
	return p, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type notifier struct {
	changed []int64
	deleted []int64
	last    map[int64]model.Book
}

func newNotifier() *notifier {
	return &notifier{last: map[int64]model.Book{}}
}

func (n *notifier) BookChanged(b model.Book) {
	n.changed = append(n.changed, b.ID)
	n.last[b.ID] = b
}

func (n *notifier) BookDeleted(id int64) {
	n.deleted = append(n.deleted, id)
}

type seqReceipts struct{ n int }

func (r *seqReceipts) NewReceipt(time.Time) string {
	r.n++
	return "R" + decimal.NewFromInt(int64(r.n)).String()
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"dorax/experiences"
	"dorax/models"
	"dorax/payment"
)

// memStore implements Store in memory with the same conditional-update
// semantics as the Mongo store.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newMemStore() *memStore {
	return &memStore{bookings: make(map[string]models.Booking)}
}

func (m *memStore) Insert(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bookings[b.BookingID]; exists {
		return fmt.Errorf("duplicate booking id %s", b.BookingID)
	}
	m.bookings[b.BookingID] = b
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *memStore) FindByToken(_ context.Context, token string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.BookingToken == token {
			return b, nil
		}
	}
	return models.Booking{}, ErrNotFound
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return m.listWhere(func(b models.Booking) bool { return b.UserID == userID })
}

func (m *memStore) ListByMerchant(_ context.Context, merchantID string) ([]models.Booking, error) {
	return m.listWhere(func(b models.Booking) bool { return b.MerchantID == merchantID })
}

func (m *memStore) ListByExperience(_ context.Context, experienceID string) ([]models.Booking, error) {
	return m.listWhere(func(b models.Booking) bool { return b.ExperienceID == experienceID })
}

func (m *memStore) listWhere(pred func(models.Booking) bool) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatusIf(_ context.Context, id string, from []models.BookingStatus, upd StatusUpdate) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	allowed := false
	for _, f := range from {
		if b.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.Booking{}, ErrInvalidState
	}

	if upd.Status != "" {
		b.Status = upd.Status
	}
	if upd.Timestamp != nil {
		ts := *upd.Timestamp
		switch upd.Status {
		case models.BookingConfirmed:
			b.ConfirmedAt = &ts
		case models.BookingRejected:
			b.RejectedAt = &ts
		case models.BookingCancelled:
			b.CancelledAt = &ts
		case models.BookingPaid:
			b.PaidAt = &ts
		case models.BookingFailed:
			b.FailedAt = &ts
		case models.BookingCompleted:
			b.CompletedAt = &ts
		}
	}
	if upd.RejectionReason != "" {
		b.RejectionReason = upd.RejectionReason
	}
	if upd.OrderID != "" {
		b.RazorpayOrderID = upd.OrderID
	}
	if upd.PaymentID != "" {
		b.RazorpayPaymentID = upd.PaymentID
		b.RazorpaySignature = upd.Signature
	}

	m.bookings[id] = b
	return b, nil
}

// fakeDirectory serves a fixed set of experiences. A non-nil err simulates a
// database outage.
type fakeDirectory struct {
	experiences map[string]models.Experience
	err         error
}

func (f *fakeDirectory) GetExperience(_ context.Context, id string) (models.Experience, error) {
	if f.err != nil {
		return models.Experience{}, f.err
	}
	exp, ok := f.experiences[id]
	if !ok {
		return models.Experience{}, experiences.ErrNotFound
	}
	return exp, nil
}

// stubGateway satisfies PaymentGateway; orderErr forces CreateOrder to fail.
type stubGateway struct {
	orderErr error
	secret   string
}

func (g *stubGateway) CreateOrder(_ context.Context, amountMajor float64, receipt string) (payment.Order, error) {
	if g.orderErr != nil {
		return payment.Order{}, g.orderErr
	}
	return payment.Order{
		ID:       "order_stub",
		Amount:   int64(amountMajor * 100),
		Currency: "INR",
		Receipt:  receipt,
	}, nil
}

func (g *stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	return payment.VerifySignature(orderID, paymentID, signature, g.secret)
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

const testSecret = "test_secret_key"

func newTestService(t *testing.T) (*Service, *memStore, *[]models.BookingEvent) {
	t.Helper()
	store := newMemStore()
	dir := &fakeDirectory{experiences: map[string]models.Experience{
		"exp1": {
			ExperienceID:    "exp1",
			Title:           "Kamakhya Temple Walk",
			MerchantID:      "merchant1",
			Price:           499,
			MaxParticipants: 6,
		},
	}}
	svc := NewService(store, payment.NewClient("rzp_test_key", testSecret, true), dir)

	events := &[]models.BookingEvent{}
	svc.lock = func(string) (func(), bool) { return func() {}, true }
	svc.emit = func(e models.BookingEvent) { *events = append(*events, e) }
	return svc, store, events
}

func mustCreate(t *testing.T, svc *Service, req CreateRequest) models.Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func baseRequest() CreateRequest {
	return CreateRequest{
		ExperienceID: "exp1",
		Name:         "Dora",
		Phone:        "9876543210",
		Participants: 2,
	}
}

func TestCreateDefaultsAmountFromPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	b := mustCreate(t, svc, baseRequest())

	if b.Status != models.BookingPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.Amount != 998 {
		t.Fatalf("expected amount 998 (499 x 2), got %v", b.Amount)
	}
	if b.Currency != "INR" {
		t.Fatalf("expected INR, got %s", b.Currency)
	}
	if b.MerchantID != "merchant1" {
		t.Fatalf("merchant id not taken from experience: %s", b.MerchantID)
	}
	if b.BookingID == "" || b.BookingToken == "" {
		t.Fatal("booking id or token missing")
	}
	if b.BookingID == b.BookingToken {
		t.Fatal("public token must differ from the internal id")
	}
}

func TestCreateDefaultsParticipantsToOne(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := baseRequest()
	req.Participants = 0
	b := mustCreate(t, svc, req)

	if b.Participants != 1 {
		t.Fatalf("expected 1 participant, got %d", b.Participants)
	}
	if b.Amount != 499 {
		t.Fatalf("expected amount 499, got %v", b.Amount)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"missing name", func(r *CreateRequest) { r.Name = "" }, ErrInvalidRequest},
		{"missing phone", func(r *CreateRequest) { r.Phone = "" }, ErrInvalidRequest},
		{"negative participants", func(r *CreateRequest) { r.Participants = -1 }, ErrInvalidRequest},
		{"negative amount", func(r *CreateRequest) { r.Amount = -10 }, ErrInvalidRequest},
		{"over capacity", func(r *CreateRequest) { r.Participants = 7 }, ErrInvalidRequest},
		{"unknown experience", func(r *CreateRequest) { r.ExperienceID = "nope" }, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfirmOnlyOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	confirmed, err := svc.Confirm(context.Background(), b.BookingID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.BookingConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatal("confirmedAt not stamped")
	}

	if _, err := svc.Confirm(context.Background(), b.BookingID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second confirm: expected ErrInvalidState, got %v", err)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	rejected, err := svc.Reject(context.Background(), b.BookingID, "fully booked that day")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.BookingRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason != "fully booked that day" {
		t.Fatalf("reason not stored: %q", rejected.RejectionReason)
	}

	if _, err := svc.Confirm(context.Background(), b.BookingID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("confirm after reject: expected ErrInvalidState, got %v", err)
	}
}

func TestTransitionOnMissingBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Confirm(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyAndSettleHappyPath(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	if _, err := svc.AttachPaymentOrder(context.Background(), b.BookingID, "order_1"); err != nil {
		t.Fatalf("attach order: %v", err)
	}

	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	settled, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified {
		t.Fatal("valid signature not verified")
	}
	if settled.Status != models.BookingPaid {
		t.Fatalf("expected paid, got %s", settled.Status)
	}
	if settled.RazorpayPaymentID != "pay_1" || settled.RazorpayOrderID != "order_1" {
		t.Fatal("gateway linkage not stored")
	}
	if settled.PaidAt == nil {
		t.Fatal("paidAt not stamped")
	}
}

func TestVerifyAndSettleBadSignatureMarksFailed(t *testing.T) {
	svc, store, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	badSig := payment.ExpectedSignature("order_1", "pay_1", "some_other_secret")
	failed, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", badSig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified {
		t.Fatal("tampered signature verified")
	}
	if failed.Status != models.BookingFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}

	// failed is retryable: a correct signature still settles it
	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	settled, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig)
	if err != nil {
		t.Fatalf("retry verify: %v", err)
	}
	if !verified || settled.Status != models.BookingPaid {
		t.Fatalf("retry did not settle: verified=%v status=%s", verified, settled.Status)
	}

	got, _ := store.FindByID(context.Background(), b.BookingID)
	if got.FailedAt == nil || got.PaidAt == nil {
		t.Fatal("expected both failedAt and paidAt stamped")
	}
}

func TestVerifyAndSettleMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "", "pay_1", "sig"); !errors.Is(err, payment.ErrMissingPaymentFields) {
		t.Fatalf("expected ErrMissingPaymentFields, got %v", err)
	}
}

func TestVerifyAndSettleOrderMismatchFails(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	if _, err := svc.AttachPaymentOrder(context.Background(), b.BookingID, "order_real"); err != nil {
		t.Fatalf("attach order: %v", err)
	}

	// signature is valid for order_other, but that is not this booking's order
	sig := payment.ExpectedSignature("order_other", "pay_1", testSecret)
	failed, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_other", "pay_1", sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified {
		t.Fatal("result for a different order settled the booking")
	}
	if failed.Status != models.BookingFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
}

func TestVerifyAndSettleIdempotentReplay(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	// same result delivered again: no-op success
	replayed, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !verified || replayed.Status != models.BookingPaid {
		t.Fatalf("replay not a no-op success: verified=%v status=%s", verified, replayed.Status)
	}

	// a different payment id against a paid booking is an error, not a settle
	sig2 := payment.ExpectedSignature("order_1", "pay_2", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_2", sig2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestVerifyAndSettleRespectsLock(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())
	svc.lock = func(string) (func(), bool) { return func() {}, false }

	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestCancelPaidBookingRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), b.BookingID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel after paid: expected ErrInvalidState, got %v", err)
	}
}

func TestCompleteRequiresPaid(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	if _, err := svc.Complete(context.Background(), b.BookingID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete before payment: expected ErrInvalidState, got %v", err)
	}

	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig); err != nil {
		t.Fatalf("settle: %v", err)
	}

	completed, err := svc.Complete(context.Background(), b.BookingID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != models.BookingCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
}

func TestCreateDirectoryOutageIsNotNotFound(t *testing.T) {
	store := newMemStore()
	dir := &fakeDirectory{err: errors.New("connection reset by peer")}
	svc := NewService(store, payment.NewClient("rzp_test_key", testSecret, true), dir)
	svc.lock = func(string) (func(), bool) { return func() {}, true }
	svc.emit = func(models.BookingEvent) {}

	_, err := svc.Create(context.Background(), baseRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("directory outage reported as not-found: %v", err)
	}
	if errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("directory outage reported as bad request: %v", err)
	}
}

func TestCreateWithOrderGatewayFailureKeepsBooking(t *testing.T) {
	store := newMemStore()
	dir := &fakeDirectory{experiences: map[string]models.Experience{
		"exp1": {ExperienceID: "exp1", MerchantID: "merchant1", Price: 499, MaxParticipants: 6},
	}}
	gw := &stubGateway{secret: testSecret, orderErr: &payment.GatewayError{StatusCode: 502, Detail: "upstream down"}}
	svc := NewService(store, gw, dir)
	svc.lock = func(string) (func(), bool) { return func() {}, true }
	svc.emit = func(models.BookingEvent) {}

	b, _, err := svc.CreateWithOrder(context.Background(), baseRequest())
	if err == nil {
		t.Fatal("expected gateway error")
	}
	if b.BookingID == "" {
		t.Fatal("created booking not returned alongside the gateway error")
	}

	// the booking survives in pending with no order attached, so a payment
	// retry targets it instead of creating a second booking
	stored, findErr := store.FindByID(context.Background(), b.BookingID)
	if findErr != nil {
		t.Fatalf("booking not persisted: %v", findErr)
	}
	if stored.Status != models.BookingPending {
		t.Fatalf("expected pending, got %s", stored.Status)
	}
	if stored.RazorpayOrderID != "" {
		t.Fatalf("failed order attached: %s", stored.RazorpayOrderID)
	}

	// retry against the same booking settles it
	gw.orderErr = nil
	if _, err := svc.AttachPaymentOrder(context.Background(), b.BookingID, "order_retry"); err != nil {
		t.Fatalf("attach after retry: %v", err)
	}
	sig := payment.ExpectedSignature("order_retry", "pay_1", testSecret)
	settled, verified, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_retry", "pay_1", sig)
	if err != nil || !verified {
		t.Fatalf("retry settle failed: verified=%v err=%v", verified, err)
	}
	if settled.Status != models.BookingPaid {
		t.Fatalf("expected paid, got %s", settled.Status)
	}
}

func TestCreateWithOrderAttachesOrder(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, order, err := svc.CreateWithOrder(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("create with order: %v", err)
	}
	if order.ID == "" {
		t.Fatal("no order id returned")
	}
	if order.Amount != 99800 {
		t.Fatalf("expected 99800 paise, got %d", order.Amount)
	}
	if b.RazorpayOrderID != order.ID {
		t.Fatalf("order %s not attached to booking (got %q)", order.ID, b.RazorpayOrderID)
	}
	if b.Status != models.BookingPending {
		t.Fatalf("attaching an order must not change status, got %s", b.Status)
	}
}

func TestLifecycleEventsEmitted(t *testing.T) {
	svc, _, events := newTestService(t)
	b := mustCreate(t, svc, baseRequest())

	if _, err := svc.Confirm(context.Background(), b.BookingID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	sig := payment.ExpectedSignature("order_1", "pay_1", testSecret)
	if _, _, err := svc.VerifyAndSettle(context.Background(), b.BookingID, "order_1", "pay_1", sig); err != nil {
		t.Fatalf("settle: %v", err)
	}

	var names []string
	for _, e := range *events {
		names = append(names, e.Event)
		if e.BookingID != b.BookingID {
			t.Fatalf("event %s carries wrong booking id %s", e.Event, e.BookingID)
		}
		if e.MerchantID != "merchant1" {
			t.Fatalf("event %s carries wrong merchant id %s", e.Event, e.MerchantID)
		}
	}
	want := []string{"created", "confirmed", "paid"}
	if len(names) != len(want) {
		t.Fatalf("expected events %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, names)
		}
	}
}

func TestListByMerchantRedactsContactDetails(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := baseRequest()
	req.Email = "dora@example.com"
	req.Notes = "vegetarian lunch please"
	mustCreate(t, svc, req)

	bookings, err := svc.ListByMerchant(context.Background(), "merchant1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	if bookings[0].Email != "" || bookings[0].Notes != "" || bookings[0].BookingToken != "" {
		t.Fatal("merchant listing leaked guest details")
	}
}

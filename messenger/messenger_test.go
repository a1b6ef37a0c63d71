package messenger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/messenger/bus"
	"github.com/shortlink-org/messenger/config"
	"github.com/shortlink-org/messenger/envelope"
	"github.com/shortlink-org/messenger/errs"
	"github.com/shortlink-org/messenger/logger"
	"github.com/shortlink-org/messenger/message"
	"github.com/shortlink-org/messenger/messenger"
)

type createInvoice struct {
	message.BaseCommand
	OrderID string
}

type invoiceCreated struct {
	message.DomainEvent
	Amount int
}

type recordingSender struct {
	mu   sync.Mutex
	sent []*envelope.Envelope
	err  error
}

func (s *recordingSender) Send(_ context.Context, env *envelope.Envelope) (*envelope.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, env)
	return env, nil
}

func createInvoiceHandler(_ context.Context, cmd createInvoice) (any, error) {
	return "invoice-for-" + cmd.OrderID, nil
}

func TestDispatchHandlesLocally(t *testing.T) {
	m := messenger.New()
	messenger.Handle(m, createInvoiceHandler)

	env, err := m.Dispatch(context.Background(), &createInvoice{OrderID: "42"})
	require.NoError(t, err)

	handled := envelope.MarkersOf[envelope.HandledMarker](env)
	require.Len(t, handled, 1)
	assert.Equal(t, "invoice-for-42", handled[0].Result)
	assert.Equal(t, "messenger_test.createInvoiceHandler", handled[0].Handler)
	assert.False(t, envelope.Has[envelope.SentMarker](env))
}

func TestDispatchConvertsPointerness(t *testing.T) {
	m := messenger.New()
	messenger.HandleNamed(m, "by-pointer", func(_ context.Context, cmd *createInvoice) (any, error) {
		return cmd.OrderID, nil
	})

	env, err := m.Dispatch(context.Background(), createInvoice{OrderID: "7"})
	require.NoError(t, err)

	last, ok := envelope.Last[envelope.HandledMarker](env)
	require.True(t, ok)
	assert.Equal(t, "7", last.Result)
}

func TestDispatchRunsEveryHandlerInOrder(t *testing.T) {
	m := messenger.New()
	var calls []string

	messenger.HandleEvent(m, func(_ context.Context, e invoiceCreated) error {
		calls = append(calls, "projection")
		return nil
	})
	messenger.HandleNamed(m, "audit", func(_ context.Context, e message.Event) (any, error) {
		calls = append(calls, "audit:"+e.EventHeader().AggregateID)
		return nil, nil
	})

	env, err := m.Dispatch(context.Background(), invoiceCreated{DomainEvent: message.NewDomainEvent("invoice-1")})
	require.NoError(t, err)

	assert.Equal(t, []string{"projection", "audit:invoice-1"}, calls)
	assert.Equal(t, 2, envelope.Count[envelope.HandledMarker](env))
}

func TestHandlersCannotChangePublishedEventIdentity(t *testing.T) {
	m := messenger.New()
	messenger.HandleEvent(m, func(_ context.Context, e invoiceCreated) error {
		e.EventID = "forged"
		e.OccurredOn = e.OccurredOn.Add(time.Hour)
		return nil
	})

	event := invoiceCreated{DomainEvent: message.NewDomainEvent("invoice-1")}
	original := event.DomainEvent

	_, err := m.Dispatch(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, original, event.DomainEvent)
}

func TestDispatchWithoutHandlers(t *testing.T) {
	_, err := messenger.New().Dispatch(context.Background(), createInvoice{})
	require.ErrorIs(t, err, bus.ErrNoHandlerForMessage)

	env, err := messenger.New(messenger.WithAllowNoHandlers(true)).Dispatch(context.Background(), createInvoice{})
	require.NoError(t, err)
	assert.Zero(t, env.Len())

	_, err = messenger.New().Dispatch(context.Background(), nil)
	require.Error(t, err)
}

func TestDispatchAggregatesHandlerFailures(t *testing.T) {
	first := errors.New("first failed")
	second := errs.Create("second failed")

	m := messenger.New()
	messenger.HandleEvent(m, func(context.Context, invoiceCreated) error { return first })
	messenger.HandleNamed(m, "ok", func(context.Context, invoiceCreated) (any, error) { return "done", nil })
	messenger.HandleEvent(m, func(context.Context, *invoiceCreated) error { return second })

	env, err := m.Dispatch(context.Background(), invoiceCreated{})

	var failed *bus.HandlerFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, []error{first, second}, failed.Errors())
	assert.Equal(t, 1, envelope.Count[envelope.HandledMarker](env))
	assert.Same(t, env, failed.Envelope)
}

func TestDispatchSkipsHandlersThatAlreadySucceeded(t *testing.T) {
	calls := 0
	m := messenger.New()
	messenger.HandleNamed(m, "once", func(context.Context, createInvoice) (any, error) {
		calls++
		return calls, nil
	})

	redelivered := envelope.Wrap(createInvoice{},
		envelope.ReceivedMarker{Channel: "async"},
		envelope.HandledMarker{Result: 0, Handler: "once"},
	)

	env, err := m.Dispatch(context.Background(), redelivered)
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, 1, envelope.Count[envelope.HandledMarker](env))
}

func TestDispatchSendsRoutedMessages(t *testing.T) {
	async := &recordingSender{}
	audit := &recordingSender{}
	handled := false

	m := messenger.New(
		messenger.WithSender("async", async),
		messenger.WithSender("audit", audit),
		messenger.WithRoute[createInvoice]("async", "audit"),
	)
	messenger.HandleNamed(m, "local", func(context.Context, createInvoice) (any, error) {
		handled = true
		return nil, nil
	})

	env, err := m.Dispatch(context.Background(), &createInvoice{OrderID: "1"})
	require.NoError(t, err)

	assert.False(t, handled)
	assert.Len(t, async.sent, 1)
	assert.Len(t, audit.sent, 1)

	sent := envelope.MarkersOf[envelope.SentMarker](env)
	require.Len(t, sent, 2)
	assert.Equal(t, "async", sent[0].Channel)
	assert.Equal(t, "audit", sent[1].Channel)
	assert.Contains(t, sent[0].Sender, "recordingSender")

	assert.Equal(t, bus.OutcomeAsyncAccepted, bus.Reconcile(env).Kind)
}

func TestDispatchTransportMarkerOverridesRoutes(t *testing.T) {
	async := &recordingSender{}
	priority := &recordingSender{}

	m := messenger.New(
		messenger.WithSender("async", async),
		messenger.WithSender("priority", priority),
		messenger.WithRoute[createInvoice]("async"),
	)

	env, err := m.Dispatch(context.Background(),
		envelope.Wrap(createInvoice{}, envelope.TransportNamesMarker{Names: []string{"priority"}}))
	require.NoError(t, err)

	assert.Empty(t, async.sent)
	assert.Len(t, priority.sent, 1)
	assert.True(t, envelope.Has[envelope.SentMarker](env))
}

func TestDispatchReceivedMessagesAreHandled(t *testing.T) {
	async := &recordingSender{}
	m := messenger.New(messenger.WithSender("async", async), messenger.WithRoute[createInvoice]("async"))
	messenger.Handle(m, createInvoiceHandler)

	env, err := m.Dispatch(context.Background(),
		envelope.Wrap(createInvoice{OrderID: "9"}, envelope.ReceivedMarker{Channel: "async"}))
	require.NoError(t, err)

	assert.Empty(t, async.sent)
	assert.Equal(t, bus.OutcomeSuccess, bus.Reconcile(env).Kind)
}

func TestDispatchSendFailures(t *testing.T) {
	_, err := messenger.New(messenger.WithRoute[createInvoice]("missing")).
		Dispatch(context.Background(), createInvoice{})
	require.ErrorIs(t, err, errs.KindLogic)
	assert.Contains(t, err.Error(), `"missing"`)

	closed := errors.New("publisher closed")
	_, err = messenger.New(
		messenger.WithSender("async", &recordingSender{err: closed}),
		messenger.WithRoute[createInvoice]("async"),
	).Dispatch(context.Background(), createInvoice{})
	require.ErrorIs(t, err, closed)
}

func TestNewDefaultReadsConfig(t *testing.T) {
	t.Setenv("SERVICE_NAME", "billing")
	t.Setenv("MESSENGER_ROUTING", `{"billing.command.create_invoice.v1":["async"]}`)

	async := &recordingSender{}
	m := messenger.NewDefault(context.Background(), logger.Discard(), config.NewWithViper(nil),
		messenger.WithSender("async", async))

	env, err := m.Dispatch(context.Background(), createInvoice{})
	require.NoError(t, err)
	assert.Len(t, async.sent, 1)
	assert.True(t, envelope.Has[envelope.SentMarker](env))

	_, err = m.Dispatch(context.Background(), invoiceCreated{})
	require.ErrorIs(t, err, bus.ErrNoHandlerForMessage)

	t.Setenv("MESSENGER_ALLOW_NO_HANDLERS", "true")
	lenient := messenger.NewDefault(context.Background(), nil, config.NewWithViper(nil))
	_, err = lenient.Dispatch(context.Background(), invoiceCreated{})
	require.NoError(t, err)
}

package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitlab.bluewillows.net/root/zonesync/internal/metrics"
	"gitlab.bluewillows.net/root/zonesync/pkg/panelapi"
	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Credentials identify the panel account. They are used for one login per
// reconciliation and never persisted.
type Credentials struct {
	User string // primary domain / login
	Pass string
}

// Request describes one desired record. Addresses holds the resolved content
// per record type; the entry for Type is what gets written.
type Request struct {
	Record    string // fully-qualified record identifier, e.g. "home.example.com"
	Type      record.Type
	TTL       int
	Addresses map[record.Type]string
}

// Syncer drives one desired record into the panel's zone. It holds no state
// across invocations; every Sync call authenticates from scratch, so
// concurrent Syncs for different records are independent.
type Syncer struct {
	client *panelapi.Client
	creds  Credentials
	logger *slog.Logger
	dryRun bool
}

// Option is a functional option for configuring the Syncer.
type Option func(*Syncer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDryRun makes the syncer log the intended write instead of performing it.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) {
		s.dryRun = dryRun
	}
}

// New creates a Syncer for the given panel client and account.
func New(client *panelapi.Client, creds Credentials, opts ...Option) *Syncer {
	s := &Syncer{
		client: client,
		creds:  creds,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sync performs one reconciliation: authenticate, fetch the zone, then insert
// the desired record or update the matching one. The returned Result always
// describes the run; the error is the classified failure, nil on success.
// A failure at any stage ends the run; there are no retries here.
func (s *Syncer) Sync(ctx context.Context, req Request) (*Result, error) {
	res := &Result{StartTime: time.Now(), Action: ActionNone, DryRun: s.dryRun}
	defer func() { s.observe(res) }()

	desired, domain, err := s.desiredRecord(req)
	if err != nil {
		return res.fail(StageParse, err), err
	}
	res.Domain = domain
	res.New = panelapi.FromDesired(desired)

	sess, err := s.client.Login(ctx, s.creds.User, s.creds.Pass)
	if err != nil {
		return res.fail(StageAuth, err), err
	}

	zone, err := s.client.GetZone(ctx, sess, domain)
	if err != nil {
		return res.fail(StageLookup, err), err
	}

	existing := zone.Find(desired)
	if existing == nil {
		res.Action = ActionCreate
	} else {
		res.Action = ActionUpdate
		res.Old = existing
	}

	if s.dryRun {
		s.logger.Info("dry-run, skipping write",
			slog.String("action", string(res.Action)),
			slog.String("domain", domain),
			slog.String("name", desired.Name),
			slog.String("type", string(desired.Type)))
		return res.complete(), nil
	}

	if existing == nil {
		err = s.client.AddRecord(ctx, sess, domain, res.New)
	} else {
		err = s.client.UpdateRecord(ctx, sess, domain, *existing, res.New)
	}
	if err != nil {
		return res.fail(StageWrite, err), err
	}

	s.logger.Info("record synchronized",
		slog.String("action", string(res.Action)),
		slog.String("domain", domain),
		slog.String("name", desired.Name),
		slog.String("type", string(desired.Type)),
		slog.String("content", desired.Content))

	return res.complete(), nil
}

// Update is the best-effort surface for callers that treat failures as
// observable-only: it runs Sync, logs a failure exactly once and never
// returns an error. The next scheduled run retries the whole sequence.
func (s *Syncer) Update(ctx context.Context, req Request) *Result {
	res, err := s.Sync(ctx, req)
	if err != nil {
		s.logger.Error("record synchronization failed",
			slog.String("record", req.Record),
			slog.String("type", string(req.Type)),
			slog.String("stage", string(res.FailedStage)),
			slog.String("error", err.Error()))
	}
	return res
}

// desiredRecord builds the desired record from the request, splitting the
// record identifier into subdomain and root domain.
func (s *Syncer) desiredRecord(req Request) (record.Desired, string, error) {
	if !record.ValidType(req.Type) {
		return record.Desired{}, "", fmt.Errorf("unsupported record type %q", req.Type)
	}

	sub, domain, err := record.SplitHostname(req.Record)
	if err != nil {
		return record.Desired{}, "", err
	}

	content := req.Addresses[req.Type]
	if content == "" {
		return record.Desired{}, "", fmt.Errorf("no resolved content for record type %s", req.Type)
	}

	return record.Desired{
		Name:    sub,
		Type:    req.Type,
		Content: content,
		TTL:     req.TTL,
	}, domain, nil
}

// observe records the run in the Prometheus metrics.
func (s *Syncer) observe(res *Result) {
	metrics.SyncDuration.Observe(res.Duration().Seconds())

	if res.Err != nil {
		metrics.SyncsTotal.WithLabelValues("error").Inc()
		switch res.FailedStage {
		case StageAuth, StageLookup, StageWrite:
			metrics.APIErrorsTotal.WithLabelValues(string(res.FailedStage)).Inc()
		}
		return
	}

	metrics.SyncsTotal.WithLabelValues("success").Inc()
	if !res.DryRun && res.Action != ActionNone {
		metrics.RecordWritesTotal.WithLabelValues(string(res.Action)).Inc()
	}
}

package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/event"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockRepository struct {
	saveFunc     func(ctx context.Context, a model.CreditAssessment) error
	findByIDFunc func(ctx context.Context, tenantID, id string) (model.CreditAssessment, error)
	listFunc     func(ctx context.Context, tenantID, applicantID string, limit, offset int) ([]model.CreditAssessment, int, error)
	saved        []model.CreditAssessment
}

func (m *mockRepository) Save(ctx context.Context, a model.CreditAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, tenantID, id string) (model.CreditAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	for _, a := range m.saved {
		if a.TenantID() == tenantID && a.ID() == id {
			return a, nil
		}
	}
	return model.CreditAssessment{}, port.ErrAssessmentNotFound
}

func (m *mockRepository) FindByApplicantID(ctx context.Context, tenantID, applicantID string, limit, offset int) ([]model.CreditAssessment, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, applicantID, limit, offset)
	}
	return nil, 0, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, events ...event.DomainEvent) error
	published   []event.DomainEvent
}

func (m *mockPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	m.published = append(m.published, evts...)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]model.CreditAssessment
	getErr  error
	setErr  error
	gets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]model.CreditAssessment{}}
}

func (m *mockCache) Get(_ context.Context, tenantID, id string) (model.CreditAssessment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return model.CreditAssessment{}, false, m.getErr
	}
	a, ok := m.entries[tenantID+"/"+id]
	return a, ok, nil
}

func (m *mockCache) Set(_ context.Context, a model.CreditAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[a.TenantID()+"/"+a.ID()] = a
	return nil
}

type mockMetrics struct {
	bands    []string
	failures []string
}

func (m *mockMetrics) RecordAssessment(_ context.Context, riskBand string, _ int, _ time.Duration) {
	m.bands = append(m.bands, riskBand)
}

func (m *mockMetrics) RecordFailure(_ context.Context, errorKind string) {
	m.failures = append(m.failures, errorKind)
}

type fixedEstimator struct {
	p   float64
	err error
}

func (f fixedEstimator) Predict(context.Context, [valueobject.FeatureVectorSize]float64) (float64, error) {
	return f.p, f.err
}

func (f fixedEstimator) ModelAUC() float64 { return 0.81 }

var errEstimatorDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

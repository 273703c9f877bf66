package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
)

// MethodIdeal is the method family that requires issuer selection.
const MethodIdeal = "ideal"

// CatalogClient is the slice of the gateway client the registry needs.
type CatalogClient interface {
	FetchMethods(ctx context.Context) (*mollie.MethodCatalog, error)
	FetchIdealIssuers(ctx context.Context) ([]mollie.IssuerEntry, error)
}

// MethodSink receives this gateway's method batch for the shared checkout
// payment-methods list.
type MethodSink interface {
	ReplaceMethods(source string, methods []models.PaymentMethod)
}

// Registry holds the enabled payment methods and the iDEAL issuer list.
// Populated once at startup; issuers are fully replaced on every refresh.
type Registry struct {
	mu       sync.RWMutex
	methods  []models.PaymentMethod
	issuers  []models.Issuer
	issuerID string

	enabled map[string]string
	client  CatalogClient
	sink    MethodSink
	logger  *zap.Logger
}

// New creates a registry filtering the gateway catalog against the
// host-configured enabled-methods mapping.
func New(client CatalogClient, enabled map[string]string, sink MethodSink, logger *zap.Logger) *Registry {
	return &Registry{
		enabled: enabled,
		client:  client,
		sink:    sink,
		logger:  logger,
	}
}

// FetchMethods loads the gateway method catalog, keeps the enabled methods
// and pushes the batch to the shared checkout list. The iDEAL entry triggers
// an issuer fetch as a side effect.
func (r *Registry) FetchMethods(ctx context.Context) error {
	catalog, err := r.client.FetchMethods(ctx)
	if err != nil {
		return err
	}
	if catalog.Count <= 0 {
		return nil
	}

	var methods []models.PaymentMethod
	for _, info := range catalog.Embedded.Methods {
		if _, ok := r.enabled[info.ID]; !ok {
			continue
		}
		methods = append(methods, models.PaymentMethod{
			Code:   info.ID,
			Title:  info.Description,
			Mollie: true,
		})
		if info.ID == MethodIdeal {
			if err := r.FetchIdealIssuers(ctx); err != nil {
				r.logger.Error("Failed to fetch iDEAL issuers", zap.Error(err))
			}
		}
	}

	r.mu.Lock()
	r.methods = append(r.methods, methods...)
	r.mu.Unlock()

	if r.sink != nil {
		r.sink.ReplaceMethods("mollie", methods)
	}
	r.logger.Info("Mollie payment methods loaded", zap.Int("count", len(methods)))
	return nil
}

// FetchIdealIssuers clears and repopulates the issuer list. The selected
// issuer is re-resolved against the new list, so a vanished id reads as none.
func (r *Registry) FetchIdealIssuers(ctx context.Context) error {
	entries, err := r.client.FetchIdealIssuers(ctx)
	if err != nil {
		return err
	}

	issuers := make([]models.Issuer, 0, len(entries))
	for _, entry := range entries {
		issuers = append(issuers, models.Issuer{
			ID:       entry.ID,
			Name:     entry.Name,
			ImageURL: entry.Image.Size2x,
		})
	}

	r.mu.Lock()
	r.issuers = issuers
	r.mu.Unlock()
	return nil
}

// Methods returns a copy of the enabled method list.
func (r *Registry) Methods() []models.PaymentMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.PaymentMethod, len(r.methods))
	copy(out, r.methods)
	return out
}

// Issuers returns a copy of the current issuer list.
func (r *Registry) Issuers() []models.Issuer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Issuer, len(r.issuers))
	copy(out, r.issuers)
	return out
}

// Has reports whether code is one of this gateway's enabled methods.
func (r *Registry) Has(code string) bool {
	_, ok := r.Method(code)
	return ok
}

// Method looks up an enabled method by code.
func (r *Registry) Method(code string) (models.PaymentMethod, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.methods {
		if m.Code == code {
			return m, true
		}
	}
	return models.PaymentMethod{}, false
}

// SelectIssuer records the shopper's issuer choice by id.
func (r *Registry) SelectIssuer(id string) {
	r.mu.Lock()
	r.issuerID = id
	r.mu.Unlock()
}

// SelectedIssuer resolves the recorded choice against the current issuer
// list. An id missing from the list resolves to none, never to a stale entry.
func (r *Registry) SelectedIssuer() (models.Issuer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, issuer := range r.issuers {
		if issuer.ID == r.issuerID {
			return issuer, true
		}
	}
	return models.Issuer{}, false
}

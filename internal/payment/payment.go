// Package payment projects the platform's gateway configuration into the
// payment methods offered at checkout.
package payment

import (
	"context"
	"log/slog"
	"sort"

	"storefront/internal/model"
)

// CashOnDelivery is the gateway offered when the configuration cannot be read.
const CashOnDelivery = "cod"

// GatewaySource lists the platform's configured gateways.
type GatewaySource interface {
	ListPaymentGateways(ctx context.Context) model.Result[[]model.PaymentGateway]
}

// Methods is the set of payment methods to offer.
// When Degraded is set the list is the cash-on-delivery fallback and
// Message names the failure.
type Methods struct {
	Methods  []model.PaymentMethod `json:"methods"`
	Degraded bool                  `json:"degraded"`
	Message  string                `json:"message,omitempty"`
}

// Normalizer filters and projects gateways for checkout.
type Normalizer struct {
	source GatewaySource
	logger *slog.Logger
}

// NewNormalizer creates a normalizer over source.
func NewNormalizer(source GatewaySource, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{source: source, logger: logger}
}

// EnabledMethods returns the enabled gateways in the platform's display
// order. Disabled gateways are never returned. If the configuration cannot
// be fetched, the result is a single cash-on-delivery method so checkout
// stays usable.
func (n *Normalizer) EnabledMethods(ctx context.Context) Methods {
	res := n.source.ListPaymentGateways(ctx)
	if !res.Success {
		n.logger.Warn("payment gateways unavailable, offering cash on delivery",
			slog.String("reason", res.Message))
		return Methods{
			Methods:  []model.PaymentMethod{Fallback()},
			Degraded: true,
			Message:  res.Message,
		}
	}
	return Methods{Methods: Normalize(res.Data)}
}

// Normalize keeps enabled gateways and projects each to a PaymentMethod.
func Normalize(gateways []model.PaymentGateway) []model.PaymentMethod {
	enabled := make([]model.PaymentGateway, 0, len(gateways))
	for _, g := range gateways {
		if g.Enabled {
			enabled = append(enabled, g)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].Order < enabled[j].Order })

	methods := make([]model.PaymentMethod, 0, len(enabled))
	for _, g := range enabled {
		methods = append(methods, project(g))
	}
	return methods
}

func project(g model.PaymentGateway) model.PaymentMethod {
	supports := g.MethodSupports
	if supports == nil {
		supports = []string{}
	}
	return model.PaymentMethod{
		ID:                g.ID,
		Title:             g.Title,
		Description:       g.Description,
		MethodTitle:       g.MethodTitle,
		MethodDescription: g.MethodDescription,
		Enabled:           true,
		Supports:          supports,
		Settings: model.PaymentSettings{
			Instructions:     stringSetting(g.Settings, "instructions"),
			EnableForMethods: listSetting(g.Settings, "enable_for_methods"),
		},
	}
}

func stringSetting(settings map[string]model.GatewaySetting, key string) string {
	s, _ := settings[key].Value.(string)
	return s
}

// listSetting reads a multiselect setting. The platform sends "" for an
// empty selection and a JSON array otherwise.
func listSetting(settings map[string]model.GatewaySetting, key string) []string {
	out := []string{}
	switch v := settings[key].Value.(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Fallback is the synthetic cash-on-delivery method.
func Fallback() model.PaymentMethod {
	return model.PaymentMethod{
		ID:                CashOnDelivery,
		Title:             "Paiement à la livraison",
		Description:       "Paiement en espèces à la réception",
		MethodTitle:       "Cash on Delivery",
		MethodDescription: "",
		Enabled:           true,
		Supports:          []string{"products"},
		Settings: model.PaymentSettings{
			Instructions:     "Paiement en espèces uniquement",
			EnableForMethods: []string{},
		},
	}
}

// DefaultMethod returns the method preselected at checkout: the first one
// offered, or "" when there is none.
func DefaultMethod(methods []model.PaymentMethod) string {
	if len(methods) == 0 {
		return ""
	}
	return methods[0].ID
}

// Find returns the offered method with this id.
func Find(methods []model.PaymentMethod, id string) (*model.PaymentMethod, bool) {
	for i := range methods {
		if methods[i].ID == id {
			return &methods[i], true
		}
	}
	return nil, false
}

package usecases

import (
	"echoforge.backend/internal/config"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
)

// WalletRegistry is the read-only mapping of supported networks to
// receiving wallet addresses. Addresses come from deployment config; an
// unconfigured network is a deployment fault, not a caller fault.
type WalletRegistry struct {
	addresses map[entities.Network]string
}

func NewWalletRegistry(cfg config.WalletConfig) *WalletRegistry {
	addresses := make(map[entities.Network]string)
	if cfg.TRC20 != "" {
		addresses[entities.NetworkTRC20] = cfg.TRC20
	}
	if cfg.ERC20 != "" {
		addresses[entities.NetworkERC20] = cfg.ERC20
	}
	if cfg.BEP20 != "" {
		addresses[entities.NetworkBEP20] = cfg.BEP20
	}
	return &WalletRegistry{addresses: addresses}
}

// AddressFor returns the receiving address for a network, or a
// ConfigurationError when none is configured.
func (r *WalletRegistry) AddressFor(network entities.Network) (string, error) {
	if !entities.ValidNetwork(network) {
		return "", domainerrors.BadRequest("unsupported network")
	}
	addr, ok := r.addresses[network]
	if !ok {
		return "", domainerrors.ConfigError("no wallet address configured for network " + string(network))
	}
	return addr, nil
}

// Networks lists the networks with a configured address.
func (r *WalletRegistry) Networks() []entities.Network {
	out := make([]entities.Network, 0, len(r.addresses))
	for _, n := range []entities.Network{entities.NetworkTRC20, entities.NetworkERC20, entities.NetworkBEP20} {
		if _, ok := r.addresses[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

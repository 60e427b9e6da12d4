package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/factory"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/presale"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server exposes the engine over HTTP. State reads come straight from the
// engine, history reads from the archive. Caller identity rides the X-Caller
// header; this is a trusted admin surface, transaction signing is chain
// plumbing and lives elsewhere.
type Server struct {
	marketplace       *market.Marketplace
	sale              *presale.Presale
	reg               *registry.Registry
	bank              *chain.Bank
	resolver          *collection.Resolver
	itemFactory       factory.ItemFactory
	collectionFactory factory.CollectionFactory
	actionRepo        repository.MarketActionRepository
	nftRepo           repository.NftRepository
	mu                *sync.Mutex
}

func NewServer(
	marketplace *market.Marketplace,
	sale *presale.Presale,
	reg *registry.Registry,
	bank *chain.Bank,
	resolver *collection.Resolver,
	itemFactory factory.ItemFactory,
	collectionFactory factory.CollectionFactory,
	actionRepo repository.MarketActionRepository,
	nftRepo repository.NftRepository,
) Server {
	return Server{marketplace, sale, reg, bank, resolver, itemFactory, collectionFactory, actionRepo, nftRepo, &sync.Mutex{}}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.serialize)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/items", s.handleGetItems).Methods("GET")
	r.HandleFunc("/items", s.handleListItem).Methods("POST")
	r.HandleFunc("/items/{itemId}", s.handleGetItem).Methods("GET")
	r.HandleFunc("/items/{itemId}/buy", s.handleBuyItem).Methods("POST")
	r.HandleFunc("/items/{itemId}/price", s.handleSetPrice).Methods("PUT")
	r.HandleFunc("/items/{itemId}/toggle", s.handleToggleItem).Methods("POST")
	r.HandleFunc("/items/{itemId}/actions", s.handleGetItemActions).Methods("GET")
	r.HandleFunc("/sellers/{addr}/items", s.handleGetSellerItems).Methods("GET")
	r.HandleFunc("/buyers/{addr}/items", s.handleGetBuyerItems).Methods("GET")
	r.HandleFunc("/actions", s.handleGetActions).Methods("GET")

	r.HandleFunc("/collections", s.handleGetCollections).Methods("GET")
	r.HandleFunc("/collections", s.handleRegisterCollection).Methods("POST")
	r.HandleFunc("/collections/{addr}", s.handleGetCollection).Methods("GET")
	r.HandleFunc("/collections/{addr}", s.handleDeregisterCollection).Methods("DELETE")
	r.HandleFunc("/collections/{addr}/active", s.handleSetCollectionActive).Methods("PUT")
	r.HandleFunc("/collections/{addr}/fee", s.handleSetCollectionFee).Methods("PUT")

	r.HandleFunc("/contracts", s.handleGetContracts).Methods("GET")
	r.HandleFunc("/contracts/{addr}/tokens", s.handleGetContractTokens).Methods("GET")
	r.HandleFunc("/contracts/{addr}/mint", s.handleMintToken).Methods("POST")
	r.HandleFunc("/contracts/{addr}/transfer", s.handleTransferToken).Methods("POST")
	r.HandleFunc("/contracts/{addr}/burn", s.handleBurnToken).Methods("POST")
	r.HandleFunc("/contracts/{addr}/approve", s.handleSetApproval).Methods("POST")
	r.HandleFunc("/contracts/{addr}/claim", s.handleClaimToken).Methods("POST")
	r.HandleFunc("/contracts/{addr}/tokens/{tokenId}", s.handleGetToken).Methods("GET")

	r.HandleFunc("/roles", s.handleGetRoles).Methods("GET")
	r.HandleFunc("/roles", s.handleRegisterRole).Methods("POST")
	r.HandleFunc("/roles/{name}/grant", s.handleGrantRole).Methods("POST")
	r.HandleFunc("/roles/{name}/revoke", s.handleRevokeRole).Methods("POST")
	r.HandleFunc("/roles/{name}/members", s.handleGetRoleMembers).Methods("GET")

	r.HandleFunc("/airdrops/{collection}/members", s.handleGetAirdropMembers).Methods("GET")
	r.HandleFunc("/airdrops/{collection}/members", s.handleAddAirdropMember).Methods("POST")
	r.HandleFunc("/airdrops/{collection}/claim", s.handleClaimAirdrop).Methods("POST")

	r.HandleFunc("/presale", s.handleGetPresale).Methods("GET")
	r.HandleFunc("/presale/contribute", s.handleContribute).Methods("POST")
	r.HandleFunc("/presale/phase", s.handleSetPresalePhase).Methods("PUT")
	r.HandleFunc("/presale/pause", s.handlePresalePause).Methods("POST")
	r.HandleFunc("/presale/unpause", s.handlePresaleUnpause).Methods("POST")

	r.HandleFunc("/admin/pause", s.handlePause).Methods("POST")
	r.HandleFunc("/admin/unpause", s.handleUnpause).Methods("POST")
	r.HandleFunc("/admin/withdraw", s.handleWithdraw).Methods("POST")
	r.HandleFunc("/admin/deposit", s.handleDeposit).Methods("POST")

	r.NotFoundHandler = notFoundHandler()

	return r
}

// serialize admits one request at a time. Engine execution is single
// threaded; concurrent mutations would race on the ledgers, so requests
// take their turn.
func (s Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s Server) caller(r *http.Request) common.Address {
	return common.HexToAddress(r.Header.Get("X-Caller"))
}

func (s Server) writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Server: Failed to encode response")
	}
}

func (s Server) writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrItemUnavailable),
		errors.Is(err, repository.ErrMarketActionNotFound),
		errors.Is(err, repository.ErrNftNotFound),
		errors.Is(err, collection.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrUnauthorized),
		errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, presale.ErrUnauthorized),
		errors.Is(err, collection.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, market.ErrInsufficientPayment),
		errors.Is(err, chain.ErrInsufficientFunds),
		errors.Is(err, presale.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, market.ErrCollectionNotAllowed),
		errors.Is(err, presale.ErrBelowMinimum),
		errors.Is(err, presale.ErrCapExceeded),
		errors.Is(err, presale.ErrSlippage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrPaused),
		errors.Is(err, market.ErrNotPaused),
		errors.Is(err, presale.ErrPaused),
		errors.Is(err, presale.ErrNotPaused),
		errors.Is(err, market.ErrInvalidState),
		errors.Is(err, registry.ErrInvalidState),
		errors.Is(err, presale.ErrInvalidState),
		errors.Is(err, collection.ErrInvalidState),
		errors.Is(err, registry.ErrInvalidOperation),
		errors.Is(err, chain.ErrReentrancy):
		return http.StatusConflict
	case errors.Is(err, market.ErrInvalidInput),
		errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, presale.ErrInvalidInput),
		errors.Is(err, collection.ErrInvalidInput),
		errors.Is(err, chain.ErrInvalidAmount):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}

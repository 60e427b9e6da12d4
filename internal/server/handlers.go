package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/entity"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/presale"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type listItemRequest struct {
	Collection string `json:"collection"`
	TokenId    uint64 `json:"tokenId"`
	Price      string `json:"price"`
}

type buyItemRequest struct {
	Payment string `json:"payment"`
}

type setPriceRequest struct {
	Price string `json:"price"`
}

type registerCollectionRequest struct {
	Address string `json:"address"`
	FeeBps  uint64 `json:"feeBps"`
}

type setCollectionActiveRequest struct {
	Active bool `json:"active"`
}

type setCollectionFeeRequest struct {
	FeeBps uint64 `json:"feeBps"`
}

type mintTokenRequest struct {
	To    string `json:"to"`
	Count uint64 `json:"count"`
}

type transferTokenRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenId uint64 `json:"tokenId"`
}

type burnTokenRequest struct {
	TokenId uint64 `json:"tokenId"`
}

type setApprovalRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type registerRoleRequest struct {
	Name string `json:"name"`
}

type grantRequest struct {
	Account   string `json:"account"`
	Whitelist bool   `json:"whitelist"`
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

type setPhaseRequest struct {
	Phase string `json:"phase"`
}

type depositRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type airdropMemberRequest struct {
	Account string `json:"account"`
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"items":  s.marketplace.ItemCount(),
		"paused": s.marketplace.Paused(),
	}

	if latest, err := s.actionRepo.GetLatestAction(); err == nil {
		body["lastActionSeq"] = latest.Seq
	}

	s.writeJson(w, http.StatusOK, body)
}

func (s Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	items := s.marketplace.Items()

	activeOnly := r.URL.Query().Get("active") == "true"

	entities := make([]entity.Item, 0, len(items))
	for _, item := range items {
		if activeOnly && (!item.Active || item.Sold) {
			continue
		}
		entities = append(entities, s.itemFactory.CreateItem(item))
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"items": entities, "total": len(entities)})
}

func (s Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "invalid itemId", http.StatusBadRequest)
		return
	}

	item, err := s.marketplace.Item(itemId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.itemFactory.CreateItem(item))
}

func (s Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	var req listItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	price, err := units.ParseAmount(req.Price)
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	itemId, err := s.marketplace.List(s.caller(r), common.HexToAddress(req.Collection), req.TokenId, price)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, map[string]interface{}{"itemId": itemId})
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "invalid itemId", http.StatusBadRequest)
		return
	}

	var req buyItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	payment, err := units.ParseAmount(req.Payment)
	if err != nil {
		http.Error(w, "invalid payment", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.Purchase(s.caller(r), itemId, payment); err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.marketplace.Item(itemId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.itemFactory.CreateItem(item))
}

func (s Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "invalid itemId", http.StatusBadRequest)
		return
	}

	var req setPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	price, err := units.ParseAmount(req.Price)
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.SetPrice(s.caller(r), itemId, price); err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.marketplace.Item(itemId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.itemFactory.CreateItem(item))
}

func (s Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "invalid itemId", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.ToggleActive(s.caller(r), itemId); err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.marketplace.Item(itemId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.itemFactory.CreateItem(item))
}

func (s Server) handleGetItemActions(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "invalid itemId", http.StatusBadRequest)
		return
	}

	size, page := getPagination(r)

	actions, total, err := s.actionRepo.GetActionsByItem(itemId, size, page)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("itemId", itemId)).Warn("Server: Failed to fetch item actions")
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"actions": actions, "total": total})
}

func (s Server) handleGetSellerItems(w http.ResponseWriter, r *http.Request) {
	seller := common.HexToAddress(mux.Vars(r)["addr"])

	items := s.marketplace.ItemsBySeller(seller)

	entities := make([]entity.Item, 0, len(items))
	for _, item := range items {
		entities = append(entities, s.itemFactory.CreateItem(item))
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"items": entities, "total": len(entities)})
}

func (s Server) handleGetBuyerItems(w http.ResponseWriter, r *http.Request) {
	buyer := common.HexToAddress(mux.Vars(r)["addr"])

	items := s.marketplace.ItemsByBuyer(buyer)

	entities := make([]entity.Item, 0, len(items))
	for _, item := range items {
		entities = append(entities, s.itemFactory.CreateItem(item))
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"items": entities, "total": len(entities)})
}

// handleGetActions serves the archived market action feed, oldest first,
// optionally filtered by action type.
func (s Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	size, page := getPagination(r)

	var (
		actions []entity.MarketAction
		total   int64
		err     error
	)

	if kind := r.URL.Query().Get("type"); kind != "" {
		actions, total, err = s.actionRepo.GetActionsByType(entity.ActionType(kind), size, page)
	} else {
		actions, total, err = s.actionRepo.GetAllActions(size, page)
	}

	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Server: Failed to fetch actions")
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"actions": actions, "total": total})
}

func (s Server) handleGetCollections(w http.ResponseWriter, r *http.Request) {
	registrations := s.marketplace.Collections()

	entities := make([]entity.Collection, 0, len(registrations))
	for _, registration := range registrations {
		entities = append(entities, s.collectionEntity(registration))
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"collections": entities, "total": len(entities)})
}

func (s Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	addr := common.HexToAddress(mux.Vars(r)["addr"])

	registration, err := s.marketplace.CollectionRegistration(addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.writeJson(w, http.StatusOK, s.collectionEntity(registration))
}

func (s Server) handleRegisterCollection(w http.ResponseWriter, r *http.Request) {
	var req registerCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	addr := common.HexToAddress(req.Address)
	if err := s.marketplace.RegisterCollection(s.caller(r), addr, req.FeeBps); err != nil {
		s.writeError(w, err)
		return
	}

	registration, err := s.marketplace.CollectionRegistration(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, s.collectionEntity(registration))
}

func (s Server) handleDeregisterCollection(w http.ResponseWriter, r *http.Request) {
	addr := common.HexToAddress(mux.Vars(r)["addr"])

	if err := s.marketplace.DeregisterCollection(s.caller(r), addr); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleSetCollectionActive(w http.ResponseWriter, r *http.Request) {
	addr := common.HexToAddress(mux.Vars(r)["addr"])

	var req setCollectionActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.SetCollectionActive(s.caller(r), addr, req.Active); err != nil {
		s.writeError(w, err)
		return
	}

	registration, err := s.marketplace.CollectionRegistration(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.collectionEntity(registration))
}

func (s Server) handleSetCollectionFee(w http.ResponseWriter, r *http.Request) {
	addr := common.HexToAddress(mux.Vars(r)["addr"])

	var req setCollectionFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.SetCollectionFee(s.caller(r), addr, req.FeeBps); err != nil {
		s.writeError(w, err)
		return
	}

	registration, err := s.marketplace.CollectionRegistration(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, s.collectionEntity(registration))
}

func (s Server) handleGetContracts(w http.ResponseWriter, r *http.Request) {
	addresses := s.resolver.Addresses()

	contracts := make([]map[string]interface{}, 0, len(addresses))
	for _, address := range addresses {
		c, exists := s.resolver.Get(address)
		if !exists {
			continue
		}
		contracts = append(contracts, map[string]interface{}{
			"address":    strings.ToLower(address.Hex()),
			"name":       c.Name(),
			"symbol":     c.Symbol(),
			"firstParty": c.FirstParty(),
			"minted":     c.TotalMinted(),
		})
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"contracts": contracts, "total": len(contracts)})
}

// handleGetContractTokens serves the archived token ledger of one contract,
// burned tokens included.
func (s Server) handleGetContractTokens(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	size, page := getPagination(r)

	tokens, total, err := s.nftRepo.GetNftsByContract(strings.ToLower(c.Address().Hex()), size, page)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contract", c.Address().Hex())).Warn("Server: Failed to fetch tokens")
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"tokens": tokens, "total": total})
}

func (s Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	tokenIds, err := c.BatchMint(s.caller(r), common.HexToAddress(req.To), req.Count)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, map[string]interface{}{"tokenIds": tokenIds})
}

func (s Server) handleTransferToken(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	var req transferTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	from := common.HexToAddress(req.From)
	to := common.HexToAddress(req.To)
	if err := c.TransferFrom(s.caller(r), from, to, req.TokenId); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleBurnToken(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	var req burnTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.Burn(s.caller(r), req.TokenId); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	var req setApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.SetApprovalForAll(s.caller(r), common.HexToAddress(req.Operator), req.Approved); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleClaimToken(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	tokenId, err := c.ClaimAirdrop(s.caller(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, map[string]interface{}{"tokenId": tokenId})
}

func (s Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	c, exists := s.contract(r)
	if !exists {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}

	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		http.Error(w, "invalid tokenId", http.StatusBadRequest)
		return
	}

	owner, err := c.OwnerOf(tokenId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	uri, err := c.TokenURI(tokenId)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{
		"tokenId":  tokenId,
		"owner":    strings.ToLower(owner.Hex()),
		"tokenUri": uri,
	})
}

func (s Server) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]interface{}{"roles": s.reg.Roles()})
}

func (s Server) handleRegisterRole(w http.ResponseWriter, r *http.Request) {
	var req registerRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	roleId, err := s.reg.RegisterRole(s.caller(r), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, map[string]interface{}{"name": req.Name, "roleId": roleId.Hex()})
}

func (s Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	roleId, err := s.roleId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account := common.HexToAddress(req.Account)
	if req.Whitelist {
		err = s.reg.AddToWhitelist(s.caller(r), roleId, account)
	} else {
		err = s.reg.Grant(s.caller(r), roleId, account)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	roleId, err := s.roleId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account := common.HexToAddress(req.Account)
	if req.Whitelist {
		err = s.reg.RemoveFromWhitelist(s.caller(r), roleId, account)
	} else {
		err = s.reg.Revoke(s.caller(r), roleId, account)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetRoleMembers(w http.ResponseWriter, r *http.Request) {
	roleId, err := s.roleId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"members": hexAddresses(s.reg.Members(roleId))})
}

func (s Server) handleGetAirdropMembers(w http.ResponseWriter, r *http.Request) {
	coll := common.HexToAddress(mux.Vars(r)["collection"])

	s.writeJson(w, http.StatusOK, map[string]interface{}{"members": hexAddresses(s.reg.AirdropMembers(coll))})
}

func (s Server) handleAddAirdropMember(w http.ResponseWriter, r *http.Request) {
	coll := common.HexToAddress(mux.Vars(r)["collection"])

	var req airdropMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.reg.AddAirdropMember(s.caller(r), coll, common.HexToAddress(req.Account)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleClaimAirdrop(w http.ResponseWriter, r *http.Request) {
	coll := common.HexToAddress(mux.Vars(r)["collection"])

	var req airdropMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.reg.MarkAirdropClaimed(s.caller(r), coll, common.HexToAddress(req.Account)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetPresale(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"phase":       s.sale.Phase().String(),
		"paused":      s.sale.Paused(),
		"treasury":    strings.ToLower(s.sale.Treasury().Hex()),
		"totalRaised": s.sale.TotalRaised().String(),
	}

	if caller := s.caller(r); caller != (common.Address{}) {
		body["contribution"] = s.sale.ContributionOf(caller).String()
	}

	s.writeJson(w, http.StatusOK, body)
}

func (s Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := units.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	caller := s.caller(r)
	if err := s.sale.Contribute(caller, amount); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{
		"contribution": s.sale.ContributionOf(caller).String(),
		"totalRaised":  s.sale.TotalRaised().String(),
	})
}

func (s Server) handleSetPresalePhase(w http.ResponseWriter, r *http.Request) {
	var req setPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	phase, err := presale.ParsePhase(req.Phase)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.sale.SetPhase(s.caller(r), phase); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handlePresalePause(w http.ResponseWriter, r *http.Request) {
	if err := s.sale.Pause(s.caller(r)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handlePresaleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := s.sale.Unpause(s.caller(r)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.marketplace.Pause(s.caller(r)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := s.marketplace.Unpause(s.caller(r)); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	amount, err := s.marketplace.EmergencyWithdraw(s.caller(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"withdrawn": amount.String()})
}

// handleDeposit is the faucet, root admin only. It credits native balance so
// buyers on dev networks can fund themselves.
func (s Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller := s.caller(r)
	if !s.reg.IsRootAdmin(caller) {
		http.Error(w, "requires root admin", http.StatusForbidden)
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := units.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	account := common.HexToAddress(req.Account)
	if err := s.bank.Deposit(account, amount); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]interface{}{"balance": s.bank.BalanceOf(account).String()})
}

func (s Server) collectionEntity(registration market.Registration) entity.Collection {
	name, symbol := "", ""
	firstParty := false
	if c, exists := s.resolver.Get(registration.Address); exists {
		name = c.Name()
		symbol = c.Symbol()
		firstParty = c.FirstParty()
	}

	return s.collectionFactory.CreateCollectionFromRegistration(registration, name, symbol, firstParty)
}

func (s Server) contract(r *http.Request) (*collection.Contract, bool) {
	return s.resolver.Get(common.HexToAddress(mux.Vars(r)["addr"]))
}

func (s Server) roleId(r *http.Request) (common.Hash, error) {
	name := mux.Vars(r)["name"]

	roleId := registry.NameHash(name)
	if name == registry.RootAdminName {
		roleId = registry.RootAdminRole
	}

	if _, exists := s.reg.RoleName(roleId); !exists {
		return common.Hash{}, errors.New("role not found")
	}

	return roleId, nil
}

func getItemId(r *http.Request) (uint64, error) {
	itemId, ok := mux.Vars(r)["itemId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(itemId, 10, 64)
}

func getPagination(r *http.Request) (int, int) {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 || size > 100 {
		size = 25
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return size, page
}

func hexAddresses(addresses []common.Address) []string {
	hex := make([]string, 0, len(addresses))
	for _, address := range addresses {
		hex = append(hex, strings.ToLower(address.Hex()))
	}

	return hex
}

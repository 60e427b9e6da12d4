package di

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/artflect/marketplace-engine/internal/archive"
	"github.com/artflect/marketplace-engine/internal/chain"
	"github.com/artflect/marketplace-engine/internal/collection"
	"github.com/artflect/marketplace-engine/internal/config"
	"github.com/artflect/marketplace-engine/internal/daemon"
	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/factory"
	"github.com/artflect/marketplace-engine/internal/market"
	"github.com/artflect/marketplace-engine/internal/messenger"
	"github.com/artflect/marketplace-engine/internal/oracle"
	"github.com/artflect/marketplace-engine/internal/presale"
	"github.com/artflect/marketplace-engine/internal/registry"
	"github.com/artflect/marketplace-engine/internal/repository"
	"github.com/artflect/marketplace-engine/internal/server"
	"github.com/artflect/marketplace-engine/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

// NewContainer wires the engine from configuration. Build failures on
// required infrastructure are fatal; a marketplace without its registry,
// banks or index has nothing to serve.
func NewContainer() (di.Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return builder.Build(), nil
}

// marketResolver adapts the collection resolver to the marketplace's
// consumer interface.
type marketResolver struct {
	inner *collection.Resolver
}

func (r marketResolver) Get(address common.Address) (market.Collection, bool) {
	c, exists := r.inner.Get(address)
	if !exists {
		return nil, false
	}

	return c, true
}

var Definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			reg := registry.New()
			if err := reg.Initialize(requiredAddress("ENGINE_ADMIN", config.Get().Engine.Admin)); err != nil {
				return nil, err
			}

			return reg, nil
		},
	},
	{
		Name: "bank",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewBank(), nil
		},
	},
	{
		Name: "stable.bank",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewBank(), nil
		},
	},
	{
		Name: "resolver",
		Build: func(ctn di.Container) (interface{}, error) {
			resolver := collection.NewResolver()
			deployCollections(ctn.Get("registry").(*registry.Registry), resolver)

			return resolver, nil
		},
	},
	{
		Name: "feed",
		Build: func(ctn di.Container) (interface{}, error) {
			if url := config.Get().Oracle.Url; url != "" {
				client, err := oracle.NewClient(url, config.Get().Oracle.Timeout, config.Get().Oracle.Debug)
				if err != nil {
					return nil, err
				}

				return client, nil
			}

			answer, err := units.ParseAmount(config.Get().Oracle.Answer)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Invalid oracle answer")
			}

			return oracle.NewFixed(answer), nil
		},
	},
	{
		Name: "scaling",
		Build: func(ctn di.Container) (interface{}, error) {
			decimals := new(big.Int).SetUint64(config.Get().Oracle.Decimals)

			return new(big.Int).Exp(big.NewInt(10), decimals, nil), nil
		},
	},
	{
		Name: "market",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Engine

			m, err := market.New(
				requiredAddress("ENGINE_MARKET_ADDRESS", cfg.MarketAddress),
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("bank").(*chain.Bank),
				ctn.Get("feed").(oracle.PriceFeed),
				marketResolver{ctn.Get("resolver").(*collection.Resolver)},
				requiredAddress("ENGINE_FEE_ACCOUNT", cfg.FeeAccount),
				ctn.Get("scaling").(*big.Int),
			)
			if err != nil {
				return nil, err
			}

			if cfg.AllowAll {
				if err := m.SetAllowAll(requiredAddress("ENGINE_ADMIN", cfg.Admin), true); err != nil {
					return nil, err
				}
			}

			return m, nil
		},
	},
	{
		Name: "router",
		Build: func(ctn di.Container) (interface{}, error) {
			router, err := presale.NewOracleRouter(
				ctn.Get("feed").(oracle.PriceFeed),
				ctn.Get("stable.bank").(*chain.Bank),
				ctn.Get("scaling").(*big.Int),
			)
			if err != nil {
				return nil, err
			}

			return router, nil
		},
	},
	{
		Name: "presale",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Presale

			sale, err := presale.New(
				requiredAddress("PRESALE_ADDRESS", cfg.Address),
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("bank").(*chain.Bank),
				ctn.Get("feed").(oracle.PriceFeed),
				ctn.Get("router").(presale.Router),
				requiredAddress("PRESALE_TREASURY", cfg.Treasury),
				ctn.Get("scaling").(*big.Int),
				presale.Caps{
					MinContribution: capAmount("PRESALE_MIN_CONTRIBUTION", cfg.MinContribution),
					MaxContribution: capAmount("PRESALE_MAX_CONTRIBUTION", cfg.MaxContribution),
					HardCap:         capAmount("PRESALE_HARD_CAP", cfg.HardCap),
				},
			)
			if err != nil {
				return nil, err
			}

			return sale, nil
		},
	},
	{
		Name: "item.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewItemRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "collection.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewCollectionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "role.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewRoleRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "nft.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewNftRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewMarketActionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "item.factory",
		Build: func(ctn di.Container) (interface{}, error) {
			return factory.NewItemFactory(), nil
		},
	},
	{
		Name: "collection.factory",
		Build: func(ctn di.Container) (interface{}, error) {
			return factory.NewCollectionFactory(), nil
		},
	},
	{
		Name: "role.factory",
		Build: func(ctn di.Container) (interface{}, error) {
			return factory.NewRoleFactory(), nil
		},
	},
	{
		Name: "action.factory",
		Build: func(ctn di.Container) (interface{}, error) {
			return factory.NewMarketActionFactory(), nil
		},
	},
	{
		Name: "nft.factory",
		Build: func(ctn di.Container) (interface{}, error) {
			return factory.NewNftFactory(), nil
		},
	},
	{
		Name: "archive",
		Build: func(ctn di.Container) (interface{}, error) {
			return archive.NewArchive(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("market").(*market.Marketplace),
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("resolver").(*collection.Resolver),
				ctn.Get("item.factory").(factory.ItemFactory),
				ctn.Get("collection.factory").(factory.CollectionFactory),
				ctn.Get("role.factory").(factory.RoleFactory),
				ctn.Get("action.factory").(factory.MarketActionFactory),
				ctn.Get("nft.factory").(factory.NftFactory),
				ctn.Get("item.repo").(repository.ItemRepository),
				ctn.Get("collection.repo").(repository.CollectionRepository),
				ctn.Get("role.repo").(repository.RoleRepository),
				ctn.Get("nft.repo").(repository.NftRepository),
			), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(config.Get().Amqp.Uri), nil
		},
	},
	{
		Name: "publisher",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewPublisher(
				ctn.Get("messenger").(messenger.MessageService),
				ctn.Get("item.factory").(factory.ItemFactory),
				ctn.Get("action.factory").(factory.MarketActionFactory),
				ctn.Get("nft.factory").(factory.NftFactory),
			), nil
		},
	},
	{
		Name: "server",
		Build: func(ctn di.Container) (interface{}, error) {
			return server.NewServer(
				ctn.Get("market").(*market.Marketplace),
				ctn.Get("presale").(*presale.Presale),
				ctn.Get("registry").(*registry.Registry),
				ctn.Get("bank").(*chain.Bank),
				ctn.Get("resolver").(*collection.Resolver),
				ctn.Get("item.factory").(factory.ItemFactory),
				ctn.Get("collection.factory").(factory.CollectionFactory),
				ctn.Get("action.repo").(repository.MarketActionRepository),
				ctn.Get("nft.repo").(repository.NftRepository),
			), nil
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("archive").(archive.Archive),
				ctn.Get("publisher").(messenger.Publisher),
				ctn.Get("server").(server.Server),
			), nil
		},
	},
}

// deployCollections seeds the resolver with the contracts named in config.
// One entry per contract, "address|name|symbol|baseUri|firstParty", with
// optional "|royaltyReceiver|royaltyBps|ngoAddress|ngoBps" suffixes. A
// malformed entry is fatal; the engine must not come up missing a contract
// the operator asked for.
func deployCollections(reg *registry.Registry, resolver *collection.Resolver) {
	admin := requiredAddress("ENGINE_ADMIN", config.Get().Engine.Admin)

	for _, entry := range config.Get().Engine.Collections {
		fields := strings.Split(entry, "|")
		if len(fields) < 5 {
			zap.L().With(zap.String("entry", entry)).Fatal("Malformed collection entry")
		}

		address := requiredAddress("ENGINE_COLLECTIONS", fields[0])
		firstParty, err := strconv.ParseBool(fields[4])
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Malformed collection entry")
		}

		c, err := collection.New(address, fields[1], fields[2], fields[3], firstParty, reg)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Failed to deploy collection")
		}

		if len(fields) >= 7 {
			receiver := common.HexToAddress(fields[5])
			if err := c.SetDefaultRoyalty(admin, receiver, parseBps(entry, fields[6])); err != nil {
				zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Failed to deploy collection")
			}
		}
		if len(fields) >= 9 {
			ngo := common.HexToAddress(fields[7])
			if err := c.SetNgo(admin, ngo, parseBps(entry, fields[8])); err != nil {
				zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Failed to deploy collection")
			}
		}

		// The contract records airdrop claims under its own authority.
		if err := reg.Grant(admin, registry.AirdropManagerRole, address); err != nil {
			zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Failed to deploy collection")
		}

		resolver.Register(c)
	}
}

func parseBps(entry, value string) uint64 {
	bps, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("entry", entry)).Fatal("Malformed collection entry")
	}

	return bps
}

func requiredAddress(name, value string) common.Address {
	address := common.HexToAddress(value)
	if address == (common.Address{}) {
		zap.L().With(zap.String("config", name)).Fatal("Missing required address")
	}

	return address
}

func capAmount(name, value string) *big.Int {
	if value == "" {
		return nil
	}

	amount, err := units.ParseAmount(value)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("config", name)).Fatal("Invalid presale cap")
	}

	return amount
}

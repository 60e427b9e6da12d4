package daemon

import (
	"net/http"
	"time"

	"github.com/artflect/marketplace-engine/internal/archive"
	"github.com/artflect/marketplace-engine/internal/config"
	"github.com/artflect/marketplace-engine/internal/elastic_search"
	"github.com/artflect/marketplace-engine/internal/messenger"
	"github.com/artflect/marketplace-engine/internal/server"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const persistInterval = 5 * time.Second

// Daemon boots the engine and serves it. Restore must complete before any
// listener attaches, otherwise the replay would be written back to the
// index.
type Daemon struct {
	elastic   elastic_search.Index
	arch      archive.Archive
	publisher messenger.Publisher
	srv       server.Server
}

func NewDaemon(elastic elastic_search.Index, arch archive.Archive, publisher messenger.Publisher, srv server.Server) *Daemon {
	return &Daemon{elastic, arch, publisher, srv}
}

func (d *Daemon) Execute() {
	d.elastic.InstallMappings()

	if config.Get().Reindex {
		zap.L().Info("Reindex complete")
		return
	}

	admin := common.HexToAddress(config.Get().Engine.Admin)
	if err := d.arch.Restore(admin); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to restore engine state")
	}

	d.arch.Subscribe()
	d.publisher.Subscribe()

	go d.persist()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Serving market API")
	if err := http.ListenAndServe(":"+config.Get().ApiPort, d.srv.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start market API")
	}
}

// persist flushes pending index writes that stay under the batch threshold.
func (d *Daemon) persist() {
	for {
		time.Sleep(persistInterval)
		d.arch.Persist()
	}
}

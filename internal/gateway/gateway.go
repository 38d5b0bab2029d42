// Package gateway glues the model catalog to the worker manager and presents
// the single service surface consumed by the HTTP layer and the CLI.
package gateway

import (
	"context"
	"io"

	"voiced/internal/catalog"
	"voiced/internal/manager"
	"voiced/pkg/types"
)

// Gateway resolves model identifiers through the catalog and delegates
// lifecycle and dispatch to the manager.
type Gateway struct {
	cat     *catalog.Catalog
	mgr     *manager.Manager
	version string
}

func New(cat *catalog.Catalog, mgr *manager.Manager, version string) *Gateway {
	return &Gateway{cat: cat, mgr: mgr, version: version}
}

// ListModels returns the catalog entries.
func (g *Gateway) ListModels() []types.ModelInfo { return g.cat.List() }

// Load resolves a catalog model and spawns a worker for it.
func (g *Gateway) Load(modelID string) error {
	info, cfg, err := g.cat.Resolve(modelID)
	if err != nil {
		return err
	}
	return g.mgr.RequestLoad(manager.WorkerSpec{
		ModelID:   info.ID,
		Name:      info.Name,
		Engine:    info.Engine,
		Kind:      info.Kind,
		ModelPath: info.Path,
		Config:    cfg,
	})
}

// Unload drains and stops the worker for modelID.
func (g *Gateway) Unload(modelID string) error { return g.mgr.RequestUnload(modelID) }

// Health returns the aggregate health snapshot with the gateway version.
func (g *Gateway) Health() types.HealthResponse {
	h := g.mgr.Health()
	h.Version = g.version
	return h
}

func (g *Gateway) Status() types.StatusResponse { return g.mgr.Status() }

func (g *Gateway) Ready() bool { return g.mgr.Ready() }

func (g *Gateway) Transcribe(ctx context.Context, opts types.TranscribeOptions, audio []byte) (*types.Transcription, error) {
	return g.mgr.Transcribe(ctx, opts, audio)
}

func (g *Gateway) Synthesize(ctx context.Context, req types.SpeechRequest, w io.Writer, flush func()) error {
	return g.mgr.Synthesize(ctx, req, w, flush)
}

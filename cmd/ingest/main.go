package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/tailor/embedder"
	cohereembedder "github.com/w-h-a/tailor/embedder/cohere"
	hashembedder "github.com/w-h-a/tailor/embedder/hash"
	hfembedder "github.com/w-h-a/tailor/embedder/huggingface"
	"github.com/w-h-a/tailor/ingest"
	blobsource "github.com/w-h-a/tailor/ingest/blob"
	fssource "github.com/w-h-a/tailor/ingest/fs"
	"github.com/w-h-a/tailor/store"
	memorystore "github.com/w-h-a/tailor/store/memory"
	postgresstore "github.com/w-h-a/tailor/store/postgres"
	searchstore "github.com/w-h-a/tailor/store/search"
)

var (
	cfg struct {
		// Source config
		Source    string `help:"Document source (fs, blob)" default:"fs"`
		Dir       string `help:"Directory to ingest when source is fs" default:"./experience-data"`
		Location  string `help:"Blob account endpoint when source is blob" env:"BLOB_LOCATION" default:""`
		Container string `help:"Blob container when source is blob" env:"BLOB_CONTAINER" default:"experience-data"`
		SasToken  string `help:"SAS token for the blob container" env:"BLOB_SAS_TOKEN" default:""`

		// Store config
		Store         string `help:"Vector store backend (postgres, search, memory)" default:"search"`
		StoreLocation string `help:"Store connection string or endpoint" env:"STORE_LOCATION" default:""`
		StoreIndex    string `help:"Index name for the search store" env:"STORE_INDEX" default:"experiences"`
		StoreKey      string `help:"API key for the search store" env:"STORE_KEY" default:""`

		// Embedder config
		Embedder     string `help:"Embedding backend (hash, huggingface, cohere)" default:"huggingface"`
		EmbedderKey  string `help:"API key for the embedder" env:"EMBEDDER_KEY" default:""`
		EmbedderName string `help:"Model identifier for the embedder" env:"EMBEDDER_MODEL" default:"sentence-transformers/all-MiniLM-L6-v2"`

		// Pipeline config
		Owner    string `help:"Owner to attribute ingested chunks to" default:"ingest"`
		MaxChars int    `help:"Chunk character budget" default:"500"`
		Workers  int    `help:"Concurrent embedding calls" default:"4"`
	}
)

func main() {
	godotenv.Load()
	_ = kong.Parse(&cfg)
	ctx := context.Background()

	// Create source
	var source ingest.Source
	switch cfg.Source {
	case "fs":
		source = fssource.NewSource(cfg.Dir)
	case "blob":
		source = blobsource.NewSource(
			blobsource.WithLocation(cfg.Location),
			blobsource.WithContainer(cfg.Container),
			blobsource.WithSasToken(cfg.SasToken),
		)
	default:
		slog.ErrorContext(ctx, "unknown source", "source", cfg.Source)
		os.Exit(1)
	}

	// Create store
	var vectorStore store.VectorStore
	switch cfg.Store {
	case "postgres":
		vectorStore = postgresstore.NewStore(
			store.WithLocation(cfg.StoreLocation),
		)
	case "search":
		vectorStore = searchstore.NewStore(
			store.WithLocation(cfg.StoreLocation),
			store.WithIndex(cfg.StoreIndex),
			store.WithApiKey(cfg.StoreKey),
		)
	case "memory":
		vectorStore = memorystore.NewStore()
	default:
		slog.ErrorContext(ctx, "unknown store backend", "store", cfg.Store)
		os.Exit(1)
	}
	defer vectorStore.Close()

	// Create embedder
	var emb embedder.Embedder
	switch cfg.Embedder {
	case "hash":
		emb = hashembedder.NewEmbedder()
	case "huggingface":
		emb = hfembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderName),
		)
	case "cohere":
		emb = cohereembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderName),
		)
	default:
		slog.ErrorContext(ctx, "unknown embedding backend", "embedder", cfg.Embedder)
		os.Exit(1)
	}

	// Run the pipeline
	pipeline := ingest.NewPipeline(
		ingest.WithSource(source),
		ingest.WithEmbedder(emb),
		ingest.WithStore(vectorStore),
		ingest.WithOwner(cfg.Owner),
		ingest.WithMaxChars(cfg.MaxChars),
		ingest.WithWorkers(cfg.Workers),
	)

	report, err := pipeline.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "ingestion failed", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "uploaded documents",
		"documents", report.Documents,
		"chunks", report.Chunks,
		"skipped", report.Skipped,
	)
}

package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"boot-shop/internal/config"
	"boot-shop/internal/seed"
	"boot-shop/internal/service"
	"boot-shop/internal/storage"
	"boot-shop/internal/store"
)

// openCatalog loads config and connects to the configured store.
func openCatalog(ctx context.Context) (service.CatalogService, *store.Store, config.Config, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return service.NewCatalogService(st.Boots), st, cfg, nil
}

func filesFor(ctx context.Context, cfg config.Config, ref string) (*seed.Files, error) {
	return seed.ForRef(ctx, ref, storage.S3Options{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
}

// catalog import SOURCE
var importCmd = &cobra.Command{
	Use:   "import SOURCE",
	Short: "Create boots from a JSON array of attribute maps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		catalog, st, cfg, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		files, err := filesFor(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		records, err := files.Read(ctx, args[0])
		if err != nil {
			return err
		}
		n, err := catalog.Import(ctx, records)
		if err != nil {
			return fmt.Errorf("imported %d of %d records: %w", n, len(records), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d boots from %s\n", n, args[0])
		return nil
	},
}

// catalog export DEST
var exportCmd = &cobra.Command{
	Use:   "export DEST",
	Short: "Write all boots as a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		catalog, st, cfg, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := catalog.Export(ctx)
		if err != nil {
			return err
		}
		files, err := filesFor(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		dest, err := files.Write(ctx, args[0], records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d boots to %s\n", len(records), dest)
		return nil
	},
}

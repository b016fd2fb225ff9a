package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/api"
	"golang.org/x/sync/errgroup"
)

func readBundle(path string) (api.ReportRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.ReportRequest{}, err
	}
	defer f.Close()

	var req api.ReportRequest
	if err := json.NewDecoder(f).Decode(&req); err != nil {
		return api.ReportRequest{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := api.Validate(req); err != nil {
		return api.ReportRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// ReadBundles decodes raw-row bundles concurrently and merges them in path order
func ReadBundles(ctx context.Context, paths []string) (api.ReportRequest, error) {
	if len(paths) == 0 {
		return api.ReportRequest{}, fmt.Errorf("at least one input bundle is required")
	}

	bundles := make([]api.ReportRequest, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			req, err := readBundle(p)
			if err != nil {
				return err
			}
			bundles[i] = req
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return api.ReportRequest{}, err
	}

	return adapters.MergeReportRequests(bundles...), nil
}

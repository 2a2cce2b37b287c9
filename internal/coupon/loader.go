package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
	"golang.org/x/sync/errgroup"
)

// LoadFromFiles reads coupon seed files concurrently, in the order given.
// Files ending in .gz are decompressed. Each non-empty, non-comment line is
//
//	name,value,shopId[,minAmount[,selectedProduct]]
//
// The first file that fails cancels the loads still running. A name
// appearing twice across all files is an error, since coupon names are unique.
func LoadFromFiles(ctx context.Context, paths []string) ([]models.Coupon, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no file paths provided")
	}

	results := make([][]models.Coupon, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			coupons, err := loadFromFile(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load file %d: %w", i+1, err)
			}
			results[i] = coupons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []models.Coupon
	for i, coupons := range results {
		for _, c := range coupons {
			if seen[c.Name] {
				return nil, fmt.Errorf("duplicate coupon name %q in file %d", c.Name, i+1)
			}
			seen[c.Name] = true
			all = append(all, c)
		}
	}

	return all, nil
}

func loadFromFile(ctx context.Context, path string) ([]models.Coupon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	return parseCoupons(ctx, r)
}

// parseCoupons reads coupon lines from r.
func parseCoupons(ctx context.Context, r io.Reader) ([]models.Coupon, error) {
	var coupons []models.Coupon
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		coupons = append(coupons, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return coupons, nil
}

func parseLine(line string) (models.Coupon, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 || len(fields) > 5 {
		return models.Coupon{}, fmt.Errorf("expected 3 to 5 fields, got %d", len(fields))
	}

	value, err := decimal.NewFromString(fields[1])
	if err != nil {
		return models.Coupon{}, fmt.Errorf("invalid value %q: %w", fields[1], err)
	}

	req := models.CreateCouponRequest{Name: fields[0], Value: value}
	if len(fields) >= 4 && fields[3] != "" {
		minAmount, err := decimal.NewFromString(fields[3])
		if err != nil {
			return models.Coupon{}, fmt.Errorf("invalid minAmount %q: %w", fields[3], err)
		}
		req.MinAmount = &minAmount
	}
	if len(fields) == 5 {
		req.SelectedProduct = fields[4]
	}
	if fields[2] == "" {
		return models.Coupon{}, fmt.Errorf("shopId is required")
	}
	if err := ValidateNew(req); err != nil {
		return models.Coupon{}, err
	}

	return models.Coupon{
		ID:              uuid.New().String(),
		Name:            NormalizeCode(req.Name),
		Value:           req.Value,
		MinAmount:       req.MinAmount,
		SelectedProduct: req.SelectedProduct,
		ShopID:          fields[2],
	}, nil
}

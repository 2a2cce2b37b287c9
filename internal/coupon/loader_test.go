package coupon

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return path
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "shop-a.csv", "# name,value,shop,min,product\nSAVE10,10,shop-a,15000\n\nONEPROD,25,shop-a,,p1\n")
	zipped := writeGzip(t, dir, "shop-b.csv.gz", "BFLAT5, 5 , shop-b\n")

	coupons, err := LoadFromFiles(context.Background(), []string{plain, zipped})
	require.NoError(t, err)
	require.Len(t, coupons, 3)

	assert.Equal(t, "SAVE10", coupons[0].Name)
	assert.Equal(t, "shop-a", coupons[0].ShopID)
	require.NotNil(t, coupons[0].MinAmount)
	assert.Equal(t, "15000", coupons[0].MinAmount.String())

	assert.Equal(t, "ONEPROD", coupons[1].Name)
	assert.Nil(t, coupons[1].MinAmount)
	assert.Equal(t, "p1", coupons[1].SelectedProduct)

	assert.Equal(t, "BFLAT5", coupons[2].Name)
	assert.Equal(t, "5", coupons[2].Value.String())
	assert.NotEmpty(t, coupons[2].ID)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("no paths", func(t *testing.T) {
		_, err := LoadFromFiles(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFiles(context.Background(), []string{filepath.Join(dir, "nope.csv")})
		assert.Error(t, err)
	})

	t.Run("failing file is reported by position", func(t *testing.T) {
		ok := writeFile(t, dir, "first.csv", "FIRST,10,shop-a\n")
		_, err := LoadFromFiles(context.Background(), []string{ok, filepath.Join(dir, "gone.csv")})
		assert.ErrorContains(t, err, "failed to load file 2")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("duplicate names across files", func(t *testing.T) {
		a := writeFile(t, dir, "a.csv", "DUP,10,shop-a\n")
		b := writeFile(t, dir, "b.csv", "DUP,20,shop-b\n")
		_, err := LoadFromFiles(context.Background(), []string{a, b})
		assert.ErrorContains(t, err, "duplicate coupon name")
	})

	t.Run("malformed line", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.csv", "ONLYNAME\n")
		_, err := LoadFromFiles(context.Background(), []string{bad})
		assert.ErrorContains(t, err, "line 1")
	})

	t.Run("value out of range", func(t *testing.T) {
		bad := writeFile(t, dir, "range.csv", "HUGE,150,shop-a\n")
		_, err := LoadFromFiles(context.Background(), []string{bad})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ok := writeFile(t, dir, "ok.csv", "OK,10,shop-a\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := LoadFromFiles(ctx, []string{ok})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

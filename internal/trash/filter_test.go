package trash

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/babarot/saferm/internal/config"
)

var filterNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

// createTestItems generates entries deleted one to four days before filterNow
func createTestItems() []*Info {
	return []*Info{
		{Identity: "a_1", Origin: "/home/u/file1.txt", TrashName: "/trash/files/a_1", DeletedAt: filterNow.Add(-24 * time.Hour)},
		{Identity: "b_2", Origin: "/home/u/file2.log", TrashName: "/trash/files/b_2", DeletedAt: filterNow.Add(-48 * time.Hour)},
		{Identity: "c_3", Origin: "/home/u/important.txt", TrashName: "/trash/files/c_3", DeletedAt: filterNow.Add(-72 * time.Hour)},
		{Identity: "d_4", Origin: "/home/u/temp.tmp", TrashName: "/trash/files/d_4", DeletedAt: filterNow.Add(-96 * time.Hour)},
	}
}

// createMockSizeFunc creates a mock DirSize function for testing
func createMockSizeFunc() func(string) (int64, error) {
	return func(path string) (int64, error) {
		sizemap := map[string]int64{
			"/trash/files/a_1": 100,    // 100 bytes
			"/trash/files/b_2": 1000,   // 1 KB
			"/trash/files/c_3": 10000,  // 10 KB
			"/trash/files/d_4": 100000, // 100 KB
		}
		size, exists := sizemap[path]
		if !exists {
			return 0, fmt.Errorf("path not found in mock")
		}
		return size, nil
	}
}

func names(items []*Info) []string {
	var res []string
	for _, item := range items {
		res = append(res, item.Name())
	}
	return res
}

func TestRejectBySize(t *testing.T) {
	items := createTestItems()

	testCases := []struct {
		name          string
		sizeConfig    config.SizeConfig
		expectedNames []string
	}{
		{
			name:          "No size filter",
			sizeConfig:    config.SizeConfig{},
			expectedNames: []string{"file1.txt", "file2.log", "important.txt", "temp.tmp"},
		},
		{
			name:          "Filter by min size",
			sizeConfig:    config.SizeConfig{Min: "500B"},
			expectedNames: []string{"file2.log", "important.txt", "temp.tmp"},
		},
		{
			name:          "Filter by max size",
			sizeConfig:    config.SizeConfig{Max: "50KB"},
			expectedNames: []string{"file1.txt", "file2.log", "important.txt"},
		},
		{
			name:          "Filter by both min and max size",
			sizeConfig:    config.SizeConfig{Min: "500B", Max: "20KB"},
			expectedNames: []string{"file2.log", "important.txt"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filtered := rejectBySize(items, tc.sizeConfig, createMockSizeFunc())
			if got := names(filtered); !slices.Equal(got, tc.expectedNames) {
				t.Errorf("Expected %v, got %v", tc.expectedNames, got)
			}
		})
	}
}

func TestRejectBySizeKeepsUnmeasurable(t *testing.T) {
	items := []*Info{{Origin: "/x/gone", TrashName: "/trash/files/missing"}}
	filtered := rejectBySize(items, config.SizeConfig{Min: "1KB"}, createMockSizeFunc())
	if len(filtered) != 1 {
		t.Errorf("Expected unmeasurable entry to be kept, got %d items", len(filtered))
	}
}

func TestFilter(t *testing.T) {
	testCases := []struct {
		name          string
		opts          config.List
		expectedNames []string
	}{
		{
			name:          "No filters",
			opts:          config.List{},
			expectedNames: []string{"file1.txt", "file2.log", "important.txt", "temp.tmp"},
		},
		{
			name: "Exclude by name",
			opts: config.List{
				Exclude: config.ExcludeConfig{Files: []string{"important.txt"}},
			},
			expectedNames: []string{"file1.txt", "file2.log", "temp.tmp"},
		},
		{
			name: "Exclude by glob",
			opts: config.List{
				Exclude: config.ExcludeConfig{Globs: []string{"*.txt"}},
			},
			expectedNames: []string{"file2.log", "temp.tmp"},
		},
		{
			name: "Within period",
			opts: config.List{
				Within: "3 days",
			},
			expectedNames: []string{"file1.txt", "file2.log"},
		},
		{
			name: "Combined filters",
			opts: config.List{
				Within: "3 days",
				Exclude: config.ExcludeConfig{
					Files:    []string{"important.txt"},
					Patterns: []string{`^temp`},
					Size:     config.SizeConfig{Min: "500B", Max: "10MB"},
				},
			},
			expectedNames: []string{"file2.log"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFilter(tc.opts)
			f.now = func() time.Time { return filterNow }
			f.size = createMockSizeFunc()

			if got := names(f.Apply(createTestItems())); !slices.Equal(got, tc.expectedNames) {
				t.Errorf("Expected %v, got %v", tc.expectedNames, got)
			}
		})
	}
}

package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"paraflow/internal/treeio"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 256 << 10
)

// seedDirs are the testdata trees of the packages the pipeline is built from.
var seedDirs = []string{
	filepath.Join("..", "treeio", "testdata"),
	filepath.Join("..", "driver", "testdata"),
}

func addCorpusSeeds(f *testing.F) {
	for _, root := range seedDirs {
		addTestdataSeeds(f, root)
	}
	// минимальные примеры на случай пустого testdata
	f.Add([]byte{})
	f.Add([]byte("paraflow: 1\nroot: {kind: program}\n"))
}

func addTestdataSeeds(f *testing.F, root string) {
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if treeio.FormatOf(path) != treeio.FormatYAML {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mtgli/gatherer-archive/internal/testfixtures"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunImages(t *testing.T) {
	t.Parallel()

	// Setup mock server
	server := httptest.NewServer(testfixtures.MockScryfallHandler(testfixtures.SampleMetadata(), testfixtures.CardImagePNG()))
	defer server.Close()

	dataDir := testfixtures.WriteArchive(t)
	imagesDir := filepath.Join(t.TempDir(), "images")

	// Capture stdout
	var stdout bytes.Buffer
	config := imagesConfig{
		dataDir:   dataDir,
		imagesDir: imagesDir,
		baseURL:   server.URL,
		stdout:    &stdout,
		logger:    discardLogger(),
	}

	if err := runImages(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Check the summary output
	output := stdout.String()
	for _, want := range []string{
		"Downloaded: 3",
		"Failed: 0",
		"Images directory: " + imagesDir,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}

	// Every card in the data directory gets an image file
	for _, name := range []string{"97042.png", "209.png", "3.png"} {
		if _, err := os.Stat(filepath.Join(imagesDir, name)); err != nil {
			t.Errorf("expected image file %s: %v", name, err)
		}
	}
}

func TestRunImages_IDList(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(testfixtures.MockScryfallHandler(testfixtures.SampleMetadata(), testfixtures.CardImagePNG()))
	defer server.Close()

	imagesDir := filepath.Join(t.TempDir(), "images")

	// An explicit id list skips the data directory entirely.
	var stdout bytes.Buffer
	config := imagesConfig{
		dataDir:   filepath.Join(t.TempDir(), "absent"),
		imagesDir: imagesDir,
		idList:    "97042, 209",
		baseURL:   server.URL,
		stdout:    &stdout,
		logger:    discardLogger(),
	}

	if err := runImages(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Downloaded: 2") {
		t.Errorf("expected Downloaded: 2 in output, got: %s", stdout.String())
	}
	for _, name := range []string{"97042.png", "209.png"} {
		if _, err := os.Stat(filepath.Join(imagesDir, name)); err != nil {
			t.Errorf("expected image file %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(imagesDir, "3.png")); !os.IsNotExist(err) {
		t.Error("expected no image for a card outside the id list")
	}
}

func TestRunImages_InvalidIDList(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	config := imagesConfig{
		imagesDir: t.TempDir(),
		idList:    "97042,abc",
		stdout:    &stdout,
		logger:    discardLogger(),
	}

	err := runImages(context.Background(), config)
	if err == nil {
		t.Fatal("expected error for invalid id list, got nil")
	}
	if !strings.Contains(err.Error(), "invalid multiverse id") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRunImages_MissingDataDir(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	config := imagesConfig{
		dataDir:   filepath.Join(t.TempDir(), "absent"),
		imagesDir: t.TempDir(),
		stdout:    &stdout,
		logger:    discardLogger(),
	}

	err := runImages(context.Background(), config)
	if err == nil {
		t.Fatal("expected error for missing data directory, got nil")
	}
	if !strings.Contains(err.Error(), "data directory does not exist") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestParseIDList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		list    string
		want    map[int]struct{}
		wantErr bool
	}{
		{
			name: "plain list",
			list: "97042,209,3",
			want: map[int]struct{}{97042: {}, 209: {}, 3: {}},
		},
		{
			name: "spaces around ids",
			list: " 97042 , 209 ",
			want: map[int]struct{}{97042: {}, 209: {}},
		},
		{
			name: "empty parts are skipped",
			list: "97042,,209,",
			want: map[int]struct{}{97042: {}, 209: {}},
		},
		{
			name: "duplicates collapse",
			list: "5,5,5",
			want: map[int]struct{}{5: {}},
		},
		{
			name:    "empty list",
			list:    "",
			wantErr: true,
		},
		{
			name:    "non-numeric id",
			list:    "97042,12x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseIDList(tt.list)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIDList(%q) = %v, want %v", tt.list, got, tt.want)
			}
		})
	}
}

package ipfs_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/akihokurino/canvas-nft-generator/ipfs"
)

var ctx = context.Background()

func TestClientUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		key, secret, ok := r.BasicAuth()
		if !ok || key != "key" || secret != "secret" {
			t.Error("expected basic auth credentials")
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected a multipart file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "work-1" {
			t.Errorf("unexpected filename %s", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "png-bytes" {
			t.Errorf("unexpected upload body %q", data)
		}

		w.Write([]byte(`{"Name":"work-1","Hash":"QmHash"}`))
	}))
	defer server.Close()

	cli, err := ipfs.NewClient(server.URL, "key", "secret", server.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := cli.Upload(ctx, []byte("png-bytes"), "work-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Hash != "QmHash" || out.Name != "work-1" {
		t.Errorf("unexpected output %#v", out)
	}
}

func TestClientUploadFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	cli, err := ipfs.NewClient(server.URL, "key", "secret", server.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = cli.Upload(ctx, []byte("png-bytes"), "work-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.KindOf(err) != apperrors.Internal {
		t.Errorf("expected internal, got %v", apperrors.KindOf(err))
	}
}

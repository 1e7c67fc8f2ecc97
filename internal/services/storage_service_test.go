package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStoreUploadsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("upload_preset") != "messmate" {
			t.Errorf("missing upload preset")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			file.Close()
			if header.Filename != "mess.jpg" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		fmt.Fprint(w, `{"secure_url":"https://img.test/mess.jpg","delete_token":"tok-1"}`)
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "messmate")
	upload, err := svc.Store("mess.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("store error: %v", err)
	}
	if upload.URL != "https://img.test/mess.jpg" || upload.DeleteToken != "tok-1" {
		t.Fatalf("unexpected upload result: %+v", upload)
	}
}

func TestStoreProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "messmate")
	if _, err := svc.Store("x.jpg", strings.NewReader("x")); err == nil {
		t.Fatal("expected an error on provider failure")
	}
}

func TestStoreMissingURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "messmate")
	if _, err := svc.Store("x.jpg", strings.NewReader("x")); err == nil {
		t.Fatal("expected an error when the response lacks a url")
	}
}

func TestDestroyPostsToken(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/delete_by_token") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotToken = r.FormValue("token")
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "messmate")
	svc.Destroy("tok-9")

	if gotToken != "tok-9" {
		t.Fatalf("expected token tok-9, got %q", gotToken)
	}
}

package storage

import (
	"context"
	"errors"
	"net/url"
	"qa-session-go/internal/model"
	"testing"
	"time"
)

type fakePresigner struct {
	calls []string
	fail  map[string]bool
}

func (f *fakePresigner) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	f.calls = append(f.calls, objectName)
	if f.fail[objectName] {
		return nil, errors.New("denied")
	}
	return &url.URL{Scheme: "https", Host: "files.local", Path: "/" + bucketName + "/" + objectName}, nil
}

func TestAttachmentResolver_Resolve(t *testing.T) {
	fp := &fakePresigner{fail: map[string]bool{"broken.pdf": true}}
	r := &AttachmentResolver{client: fp, bucket: "attachments", expiry: time.Hour}

	in := []model.Attachment{
		{Name: "has url", URL: "https://cdn/x.png", ObjectKey: "x.png"},
		{Name: "needs url", ObjectKey: "docs/guide.pdf"},
		{Name: "no key"},
		{Name: "broken", ObjectKey: "broken.pdf"},
	}
	out := r.Resolve(context.Background(), in)

	if out[0].URL != "https://cdn/x.png" {
		t.Errorf("existing URL changed: %q", out[0].URL)
	}
	if out[1].URL != "https://files.local/attachments/docs/guide.pdf" {
		t.Errorf("resolved URL = %q", out[1].URL)
	}
	if out[2].URL != "" || out[3].URL != "" {
		t.Errorf("unexpected URLs: %q %q", out[2].URL, out[3].URL)
	}
	if in[1].URL != "" {
		t.Error("Resolve() mutated its input")
	}
	if len(fp.calls) != 2 {
		t.Errorf("presign calls = %v, want 2", fp.calls)
	}
}

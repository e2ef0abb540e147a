package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetTransport_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected method GET, got %s", r.Method)
		}
		if r.URL.RawQuery != "page=2" {
			t.Errorf("Expected query page=2, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Test-Header") != "test-value" {
			t.Errorf("Expected header X-Test-Header: test-value, got %s", r.Header.Get("X-Test-Header"))
		}
		if r.ContentLength > 0 {
			t.Errorf("Expected no body, got %d bytes", r.ContentLength)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer server.Close()

	resp, err := NewRequest().
		SetMethod("GET").
		SetURL(server.URL+"/items").
		SetQuery(map[string]string{"page": "2"}).
		WithHeader("X-Test-Header", "test-value").
		Send(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status())
	assert.Equal(t, `{"message":"success"}`, resp.BodyString())
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, "HTTP/1.1", resp.Headers()[VersionKey])
	assert.Equal(t, "200 OK", resp.Headers()[StatusCodeKey])

	info := resp.Info()["info"].(map[string]any)
	assert.Equal(t, server.URL+"/items?page=2", info["url"])
	assert.Equal(t, 200, info["http_code"])
	assert.Equal(t, "127.0.0.1", info["primary_ip"])
	assert.Equal(t, 0, info["redirect_count"])
}

func TestNetTransport_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"method":"` + r.Method + `","type":"` + r.Header.Get("Content-Type") + `","echo":` + string(body) + `}`))
	}))
	defer server.Close()

	resp, err := NewRequest().
		SetMethod("POST").
		SetURL(server.URL).
		SetHeaders(map[string]string{"Content-Type": "application/json"}).
		SetBody(map[string]any{"name": "Jane"}).
		Send(context.Background())
	require.NoError(t, err)

	data, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"method": "POST",
		"type":   "application/json",
		"echo":   map[string]any{"name": "Jane"},
	}, data)
}

func TestNetTransport_CustomMethods(t *testing.T) {
	for _, method := range []string{"PUT", "PATCH", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				w.Write([]byte(r.Method + " " + string(body)))
			}))
			defer server.Close()

			resp, err := NewRequest().
				SetMethod(method).
				SetURL(server.URL).
				WithHeader("Content-Type", "application/x-www-form-urlencoded").
				SetBody(map[string]string{"k": "v"}).
				Send(context.Background())
			require.NoError(t, err)
			assert.Equal(t, method+" k=v", resp.BodyString())
		})
	}
}

func TestNetTransport_Head(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Method", r.Method)
		w.Write([]byte("ignored for HEAD"))
	}))
	defer server.Close()

	resp, err := NewRequest().SetMethod("HEAD").SetURL(server.URL).Send(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status())
	assert.Equal(t, "HEAD", resp.Header("X-Method"))
	assert.Empty(t, resp.Body())
}

func TestNetTransport_FollowRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Hop", "old")
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Final", "yes")
		w.Write([]byte("arrived"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := NewRequest().SetMethod("GET").SetURL(server.URL + "/old").Send(context.Background())
	require.NoError(t, err)

	blocks := resp.HeaderBlocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "302 Found", blocks[0][StatusCodeKey])
	assert.Equal(t, "old", blocks[0].Get("X-Hop"))

	assert.Equal(t, http.StatusOK, resp.Status())
	assert.Equal(t, "yes", resp.Header("X-Final"))
	assert.Empty(t, resp.Header("X-Hop"), "only the final block is exposed")
	assert.Equal(t, "arrived", resp.BodyString())

	info := resp.Info()["info"].(map[string]any)
	assert.Equal(t, 1, info["redirect_count"])
	assert.Equal(t, server.URL+"/new", info["url"])
}

func TestNetTransport_NoFollow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusMovedPermanently)
	}))
	defer server.Close()

	resp, err := NewRequest().SetMethod("GET").SetURL(server.URL).SetFollowRedirects(false).Send(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusMovedPermanently, resp.Status())
	assert.Equal(t, "/elsewhere", resp.Header("Location"))
	assert.Len(t, resp.HeaderBlocks(), 1)
}

func TestNetTransport_InformationalBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stage", "early")
		w.WriteHeader(http.StatusEarlyHints)
		w.Header().Set("X-Stage", "final")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("done"))
	}))
	defer server.Close()

	resp, err := NewRequest().SetMethod("GET").SetURL(server.URL).Send(context.Background())
	require.NoError(t, err)

	blocks := resp.HeaderBlocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "103 Early Hints", blocks[0][StatusCodeKey])
	assert.Equal(t, "early", blocks[0].Get("X-Stage"))

	assert.Equal(t, "final", resp.Header("X-Stage"))
	assert.Equal(t, "200 OK", resp.Headers()[StatusCodeKey])
	assert.Equal(t, "done", resp.BodyString())
}

func TestNetTransport_Multipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.txt")
	require.NoError(t, os.WriteFile(path, []byte("pixels"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, fh, err := r.FormFile("avatar")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		w.Write([]byte(r.FormValue("user") + ":" + fh.Filename + ":" + string(content)))
	}))
	defer server.Close()

	resp, err := NewRequest().
		SetMethod("POST").
		SetURL(server.URL).
		SetHeaders(map[string]string{"Content-Type": "multipart/form-data"}).
		SetBody(map[string]string{"user": "jane"}).
		SetFiles(map[string]string{"avatar": path}).
		Send(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status())
	assert.Equal(t, "jane:avatar.txt:pixels", resp.BodyString())
}

func TestNetTransport_TLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure"))
	}))
	defer server.Close()

	t.Run("Untrusted certificate fails", func(t *testing.T) {
		_, err := NewRequest().SetMethod("GET").SetURL(server.URL).Send(context.Background())

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.NotEmpty(t, te.Message)
	})

	t.Run("Verification disabled", func(t *testing.T) {
		resp, err := NewRequest().SetMethod("GET").SetURL(server.URL).SetVerifyTLS(false).Send(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "secure", resp.BodyString())
	})

	t.Run("Trusted root", func(t *testing.T) {
		pool := x509.NewCertPool()
		pool.AddCert(server.Certificate())

		resp, err := NewRequest().
			SetMethod("GET").
			SetURL(server.URL).
			SetTransport(&NetTransport{TLSConfig: &tls.Config{RootCAs: pool}}).
			Send(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "secure", resp.BodyString())
		assert.GreaterOrEqual(t, resp.Timing().TLSHandshakeTime, time.Duration(0))
	})
}

func TestNetTransport_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	start := time.Now()
	_, err := NewRequest().SetMethod("GET").SetURL(server.URL).SetTimeout(1).Send(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestNetTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	_, err := NewRequest().SetMethod("GET").SetURL(target).Send(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, strings.Contains(te.Message, "connect") || strings.Contains(te.Message, "refused"), te.Message)
}

func TestNetTransport_HeaderSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	tresp, err := (&NetTransport{}).RoundTrip(context.Background(), &TransportRequest{
		URL:             server.URL,
		Method:          "GET",
		Timeout:         5 * time.Second,
		VerifyTLS:       true,
		FollowRedirects: true,
	})
	require.NoError(t, err)

	head := string(tresp.Raw[:tresp.HeaderSize])
	assert.True(t, strings.HasPrefix(head, "HTTP/1.1 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(head, "\r\n\r\n"))
	assert.Equal(t, "payload", string(tresp.Raw[tresp.HeaderSize:]))
	assert.Equal(t, tresp.HeaderSize, tresp.Meta["header_size"])
	assert.Equal(t, len("payload"), tresp.Meta["size_download"])
}

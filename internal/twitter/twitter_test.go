// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.astrophena.name/radecbot/internal/request"
	"go.astrophena.name/radecbot/internal/testutil"
)

var testCreds = Credentials{
	APIKey:       "consumer-key",
	APISecret:    "consumer-secret",
	BearerToken:  "bearer",
	AccessToken:  "access-token",
	AccessSecret: "access-secret",
}

func TestPost(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		auth := r.Header.Get("Authorization")
		for _, want := range []string{`OAuth `, `oauth_consumer_key="consumer-key"`, `oauth_token="access-token"`, `oauth_signature_method="HMAC-SHA1"`} {
			if !strings.Contains(auth, want) {
				http.Error(w, "bad authorization "+auth, http.StatusUnauthorized)
				return
			}
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got = append(got, body.Text)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "1445880548472328192", "text": body.Text},
		})
	}))
	defer ts.Close()

	c := New(Config{Credentials: testCreds, APIURL: ts.URL + "/"})
	tweet, err := c.Post(context.Background(), "☉: 00h00m00s; +00°00′00″")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, tweet, Tweet{ID: "1445880548472328192", Text: "☉: 00h00m00s; +00°00′00″"})
	testutil.AssertEqual(t, got, []string{"☉: 00h00m00s; +00°00′00″"})
}

func TestPostErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forbidden/2/tweets":
			// Echo the credentials back to check they are scrubbed.
			http.Error(w, `{"title":"Forbidden","detail":"`+r.Header.Get("Authorization")+`"}`, http.StatusForbidden)
		case "/noid/2/tweets":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	t.Run("forbidden", func(t *testing.T) {
		c := New(Config{Credentials: testCreds, APIURL: ts.URL + "/forbidden"})
		_, err := c.Post(context.Background(), "hello")
		var se *request.StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
			t.Fatalf("want 403 StatusError, got %v", err)
		}
		for _, secret := range []string{testCreds.APIKey, testCreds.AccessToken} {
			if strings.Contains(err.Error(), secret) {
				t.Fatalf("error %q leaks %q", err, secret)
			}
		}
		if !strings.Contains(err.Error(), "[EXPUNGED]") {
			t.Fatalf("error %q is not scrubbed", err)
		}
	})

	t.Run("no id", func(t *testing.T) {
		c := New(Config{Credentials: testCreds, APIURL: ts.URL + "/noid"})
		if _, err := c.Post(context.Background(), "hello"); err == nil {
			t.Fatal("want error")
		}
	})

	t.Run("too long", func(t *testing.T) {
		c := New(Config{Credentials: testCreds, APIURL: ts.URL})
		_, err := c.Post(context.Background(), strings.Repeat("♃", 141))
		if !errors.Is(err, ErrTooLong) {
			t.Fatalf("want %v, got %v", ErrTooLong, err)
		}
	})
}

func TestWeightedLength(t *testing.T) {
	cases := map[string]int{
		"":                      0,
		"hello":                 5,
		"+12°34′56″":            10,
		"☿: 13h27m41s":          13,
		strings.Repeat("♃", 10): 20,
	}
	for text, want := range cases {
		testutil.AssertEqual(t, WeightedLength(text), want)
	}
}

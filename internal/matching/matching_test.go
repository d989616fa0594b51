package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudnativeg23/stadium-matching/internal/models"
)

func TestSlotStart(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*3600)
	tests := []struct {
		name  string
		order models.Order
		want  time.Time
	}{
		{
			name:  "normalized date plus start hour",
			order: models.Order{Date: time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC), StartTime: 10},
			want:  time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "timezone offset collapses to the calendar day",
			order: models.Order{Date: time.Date(2023, 11, 20, 23, 30, 0, 0, taipei), StartTime: 8},
			want:  time.Date(2023, 11, 20, 8, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotStart(tt.order); !got.Equal(tt.want) {
				t.Errorf("SlotStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClientCreateMatch(t *testing.T) {
	var received CreateMatchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matching/create" {
			t.Errorf("path = %s, want /matching/create", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(CreateMatchResponse{
			Groups: map[string][]string{"group_1": {"a", "b"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.CreateMatch(context.Background(), "42", 3)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	if received.RoomID != "42" || received.Params["min_users"] != 3 {
		t.Errorf("request = %+v, want room 42 with min_users 3", received)
	}
	if len(resp.Groups["group_1"]) != 2 {
		t.Errorf("groups = %v, want group_1 with two members", resp.Groups)
	}
}

func TestClientCreateMatchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no viable grouping"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.CreateMatch(context.Background(), "42", 3); err == nil {
		t.Fatal("CreateMatch returned nil error on 400 response")
	}
}

func TestNewClientEmptyURL(t *testing.T) {
	if client := NewClient(""); client != nil {
		t.Fatal("NewClient with empty URL should yield nil")
	}
}

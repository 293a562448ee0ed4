//go:build ignore

// Local target for offline benchmarks:
//
//	go run scripts/test-server.go 8080
//	hsm run --url http://localhost:8080/users/homer0/repos
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
)

type repo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
}

// repos mimics the size and shape of the default target
func repos(n int) []repo {
	list := make([]repo, n)
	for i := range list {
		name := fmt.Sprintf("project-%03d", i)
		list[i] = repo{
			ID:          1000 + i,
			Name:        name,
			FullName:    "homer0/" + name,
			HTMLURL:     "https://github.com/homer0/" + name,
			Description: "A sample repository used as HTTP Speed Meter payload",
			Stars:       i * 7 % 97,
		}
	}
	return list
}

func main() {
	body, err := json.Marshal(repos(30))
	if err != nil {
		log.Fatal(err)
	}

	http.HandleFunc("/users/homer0/repos", func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"accept":     r.Header.Get("Accept"),
			"user_agent": r.UserAgent(),
		}).Debug("request")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(body)
	})

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := "8080"
	if len(os.Args) > 1 {
		port = os.Args[1]
	}
	log.Infof("Starting test server on http://localhost:%s", port)
	log.Info("Endpoints: GET /users/homer0/repos, GET /health")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

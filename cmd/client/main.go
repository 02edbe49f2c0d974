// cmd/client/main.go
//
// Small smoke-test client that exercises the main API flows against a
// running server: register, login, create a task, move it through the
// lifecycle, and comment on it.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var (
	baseURL  = flag.String("addr", "http://localhost:8080", "server base URL")
	password = flag.String("password", "Sm0ke!TestPass", "password for the throwaway account")
)

type client struct {
	http  *http.Client
	base  string
	token string
}

func (c *client) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, data)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func main() {
	flag.Parse()

	c := &client{
		http: &http.Client{Timeout: 10 * time.Second},
		base: *baseURL,
	}

	suffix := time.Now().UnixNano() % 1_000_000
	username := fmt.Sprintf("smoke%d", suffix)
	email := fmt.Sprintf("%s@example.com", username)

	log.Printf("Registering %s", email)
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": *password,
	}, &registered)
	if err != nil {
		log.Fatalf("register: %v", err)
	}
	c.token = registered.Tokens.AccessToken

	log.Println("Creating a task")
	var task struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Version int64  `json:"version"`
	}
	err = c.do(http.MethodPost, "/api/tasks", map[string]any{
		"title": "Smoke test task",
		"tags":  []string{"smoke"},
	}, &task)
	if err != nil {
		log.Fatalf("create task: %v", err)
	}

	for _, status := range []string{"in_progress", "in_review", "done"} {
		log.Printf("Transition %s -> %s", task.Status, status)
		err = c.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", map[string]any{
			"status":  status,
			"version": task.Version,
		}, &task)
		if err != nil {
			log.Fatalf("transition: %v", err)
		}
	}

	log.Println("Commenting")
	err = c.do(http.MethodPost, "/api/tasks/"+task.ID+"/comments", map[string]any{
		"content": fmt.Sprintf("Finished by @%s", username),
	}, nil)
	if err != nil {
		log.Fatalf("comment: %v", err)
	}

	log.Println("Smoke test passed")
}

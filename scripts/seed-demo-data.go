package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const apiBase = "http://localhost:8080/api"

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func registerAndLogin(username, email, password string) (*User, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(apiBase+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	loginResp, err := http.Post(apiBase+"/auth/login", "application/json", bytes.NewBuffer(loginBody))
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer loginResp.Body.Close()

	if loginResp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(loginResp.Body)
		return nil, fmt.Errorf("login failed (%d): %s", loginResp.StatusCode, string(bodyBytes))
	}

	var tokens TokenResponse
	if err := json.NewDecoder(loginResp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &User{
		Username: username,
		Email:    email,
		Password: password,
		Token:    tokens.AccessToken,
	}, nil
}

func syncCatalog() error {
	resp, err := http.Post(apiBase+"/valorant/sync", "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sync failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func createFixedPoint(token, title, characterID, mapID string) (uint, error) {
	step1 := "Stand in the corner behind the crate"
	step2 := "Line the crosshair up with the antenna and release"
	body, _ := json.Marshal(map[string]interface{}{
		"title":       title,
		"characterId": characterID,
		"mapId":       mapID,
		"steps": []map[string]interface{}{
			{"stepOrder": 1, "description": step1, "positionX": 0.42, "positionY": 0.73},
			{"stepOrder": 2, "description": step2, "skillPositionX": 0.58, "skillPositionY": 0.21},
		},
	})

	req, _ := http.NewRequest("POST", apiBase+"/fixed-points/", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("create failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode failed: %w", err)
	}
	return result.ID, nil
}

func favorite(token string, id uint) error {
	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/fixed-points/%d/favorite", apiBase, id), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("favorite failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func generateUsername(index int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("demo_%d_%s", index, string(random))
}

func main() {
	rand.Seed(time.Now().UnixNano())

	fmt.Println("Seeding demo data...")

	fmt.Println("\nSyncing agent and map catalog...")
	if err := syncCatalog(); err != nil {
		fmt.Fprintf(os.Stderr, "Catalog sync failed (continuing): %v\n", err)
	} else {
		fmt.Println("  ✓ Catalog synced")
	}

	password := "demopassword123"
	var users []*User

	fmt.Println("\nRegistering 3 demo users...")
	for i := 1; i <= 3; i++ {
		username := generateUsername(i)
		user, err := registerAndLogin(username, username+"@example.com", password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register user %d: %v\n", i, err)
			os.Exit(1)
		}
		users = append(users, user)
		fmt.Printf("  ✓ User %d: %s\n", i, user.Username)
	}

	lineups := []struct {
		title       string
		characterID string
		mapID       string
	}{
		{"Sova recon into A main", "sova", "ascent"},
		{"Viper snake bite B default", "viper", "bind"},
		{"Brimstone triple smoke A execute", "brimstone", "haven"},
		{"KAY/O knife mid control", "kayo", "icebox"},
	}

	fmt.Println("\nCreating demo fixed points...")
	var ids []uint
	for i, lineup := range lineups {
		author := users[i%len(users)]
		id, err := createFixedPoint(author.Token, lineup.title, lineup.characterID, lineup.mapID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create fixed point: %v\n", err)
			os.Exit(1)
		}
		ids = append(ids, id)
		fmt.Printf("  ✓ %s (by %s)\n", lineup.title, author.Username)
	}

	fmt.Println("\nFavoriting...")
	for _, id := range ids[:2] {
		if err := favorite(users[0].Token, id); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to favorite: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  ✓ %s favorited 2 fixed points\n", users[0].Username)

	fmt.Println("\n============================================================")
	fmt.Println("DEMO DATA READY")
	fmt.Println("============================================================")
	fmt.Printf("\nLogin at http://localhost:5173/login (password: %s):\n", password)
	for i, user := range users {
		fmt.Printf("  User %d: %s / %s\n", i+1, user.Email, user.Password)
	}
}

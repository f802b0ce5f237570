// Command-line tool to create a franchisee account directly in the database.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/config"
	"github.com/Jogatev/chebeneleven-sub000/internal/database"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func main() {

	fmt.Println("Creating franchisee account")

	reader := bufio.NewReader(os.Stdin)

	username := prompt(reader, "Enter username: ")
	if len(username) < 3 {
		fmt.Println("Username must be at least 3 characters.")
		os.Exit(1)
	}
	franchiseeName := prompt(reader, "Franchisee name: ")
	franchiseeID := prompt(reader, "Franchisee id (optional): ")
	location := prompt(reader, "Location: ")
	email := prompt(reader, "Email (optional): ")

	generated := false
	password := prompt(reader, "Password (leave empty to generate): ")
	if password == "" {
		password = generateRandomString(8)
		generated = true
	} else {
		if len(password) < 8 {
			fmt.Println("Password must be at least 8 characters.")
			os.Exit(1)
		}
		if prompt(reader, "Confirm password: ") != password {
			fmt.Println("Passwords do not match.")
			os.Exit(1)
		}
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	cfg := config.Load()
	db, err := database.NewDBInstance(database.ConfigFromSettings(cfg.DB))
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	store := storage.NewPostgresStorage(db)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	user := model.User{
		Username:       username,
		Password:       hashedPassword,
		FranchiseeName: franchiseeName,
		FranchiseeID:   franchiseeID,
		Location:       location,
	}
	if email != "" {
		user.Email = &email
	}

	created, err := store.CreateUser(context.Background(), user)
	if errors.Is(err, storage.ErrDuplicateUsername) {
		fmt.Println("Username already taken")
		return
	}
	if err != nil {
		log.Fatal("failed to create franchisee: ", err)
	}

	fmt.Println("Franchisee created successfully!")
	fmt.Println("======================================")
	fmt.Printf("ID:       %d\n", created.ID)
	fmt.Printf("Username: %s\n", created.Username)
	if generated {
		fmt.Printf("Password: %s\n", password)
	}
	fmt.Println("======================================")
}

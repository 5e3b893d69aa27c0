// Command useradd creates a book review account directly in the database.
// It reads the same configuration sources as the server (JSON file, .env,
// BOOKREVIEW_* variables, -d for the DSN) and prompts for the password
// without echo.
//
// Usage:
//
//	useradd -name alice [-d postgres://...]
package main

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/flagx"
	"github.com/dmitrijs2005/bookreview/internal/server/auth"
	"github.com/dmitrijs2005/bookreview/internal/server/config"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookreview/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	username := parseName(os.Args[1:])
	if username == "" {
		var err error
		username, err = prompt(bufio.NewReader(os.Stdin), os.Stdout, "Enter user name")
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer common.WipeByteArray(password)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	user, err := addUser(ctx, services.NewUserService(db, rm, auth.NewBcryptHasher(cfg.BcryptCost), nil), username, password)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Created user %q (id=%d)\n", user.UserName, user.ID)
}

// parseName reads -name from args; all other flags belong to the config loader.
func parseName(args []string) string {
	return strings.TrimSpace(flagx.Value(args, "-name", "--name"))
}

func prompt(reader *bufio.Reader, w io.Writer, text string) (string, error) {
	if _, err := fmt.Fprint(w, text+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// getPassword asks twice and fails when the entries differ. The returned
// slice should be wiped by the caller.
func getPassword(w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(w, "Enter password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

type registrar interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

func addUser(ctx context.Context, r registrar, username string, password []byte) (*models.User, error) {
	user, err := r.Register(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("user %q already exists", username)
		}
		return nil, err
	}
	return user, nil
}

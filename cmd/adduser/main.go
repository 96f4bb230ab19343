// Command adduser registers a user directly against the journal, without
// going through the web server. It is the operator's recovery path: create
// the first account, or re-add one from a backup, while the server is down.
//
// Usage:
//
//	adduser -n alice [-d storageroot] [-c config.json]
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/filehost/internal/common"
	"github.com/dmitrijs2005/filehost/internal/flagx"
	"github.com/dmitrijs2005/filehost/internal/server"
	"github.com/dmitrijs2005/filehost/internal/server/config"
	"github.com/dmitrijs2005/filehost/internal/server/sessions"
	"github.com/dmitrijs2005/filehost/internal/server/usermanager"
	"github.com/dmitrijs2005/filehost/internal/server/users"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var name string
	args := flagx.FilterArgs(os.Args[1:], []string{"-n"})
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.StringVar(&name, "n", "", "name of the user to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("user name required (-n)")
	}

	cfg := config.LoadConfig()
	logger := server.NewLogger(cfg.LogFormat)

	registry, err := users.OpenRegistry(cfg.StorageRoot)
	if err != nil {
		return err
	}
	manager := usermanager.New(registry, sessions.NewTable(0), logger)

	password, err := promptPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := manager.SignUp(name, password); err != nil {
		return err
	}
	if err := manager.Flush(); err != nil {
		return err
	}

	logger.Info(context.Background(), "user created", "name", name)
	return nil
}

// promptPassword reads the password twice with terminal echo off and
// insists the two entries match.
func promptPassword() ([]byte, error) {
	fmt.Print("Enter password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}

	fmt.Print("Repeat password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

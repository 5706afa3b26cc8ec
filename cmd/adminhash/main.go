// Command adminhash prints an argon2id hash for ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/smartvoting/backend/internal/config"
	"github.com/smartvoting/backend/internal/services"
)

func main() {
	password := flag.String("password", "", "password to hash (read from stdin when empty)")
	flag.Parse()

	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %v", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		log.Fatal("password must not be empty")
	}

	hash, err := services.HashPassword(*password, config.Load().Argon2)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}

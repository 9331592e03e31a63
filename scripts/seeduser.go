// One-off: go run scripts/seeduser.go <username> <password> [cash]
// Prints an INSERT for a ready-to-use account.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username, password, cash := "demo", "changeme123", "10000.00"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}
	if len(os.Args) > 3 {
		cash = os.Args[3]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("INSERT INTO users (username, password_hash, cash) VALUES ('%s', '%s', %s);\n", username, string(h), cash)
}

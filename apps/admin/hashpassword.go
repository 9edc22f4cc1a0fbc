package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func (cli *commandLine) hashPassword(pwd []byte) error {
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, string(hash))
	return err
}

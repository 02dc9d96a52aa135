package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ladderscope/internal/auth"
	"ladderscope/internal/config"
)

var tokenSave bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an ingest token for POST /rounds",
	Long: `Generate a random ingest token and its bcrypt hash.

The server only stores the hash (server.ingestTokenHash). Clients send the
token as "Authorization: Bearer <token>". The token is shown once.

Examples:
  ladderscope token
  ladderscope token --save`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenSave, "save", false, "Write the hash into config.json")
	rootCmd.AddCommand(tokenCmd)
}

// TokenResult is a freshly generated ingest token
type TokenResult struct {
	Token string `json:"token"`
	Hash  string `json:"hash"`
	Saved bool   `json:"saved"`
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}

	res := TokenResult{Token: token, Hash: hash}
	if tokenSave {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLogs()

		saved := *cfg
		saved.DataDir = ""
		saved.Server.IngestTokenHash = hash
		if err := saved.Save(dataDirFlag); err != nil {
			return err
		}
		res.Saved = true
	}
	return printResponse(res)
}

func formatTokenHuman(r TokenResult) string {
	var b strings.Builder
	header(&b, "Ingest token")
	b.WriteString(fmt.Sprintf("Token: %s\n", r.Token))
	b.WriteString(fmt.Sprintf("Hash:  %s\n\n", r.Hash))
	if r.Saved {
		b.WriteString("The hash was written to config.json. Restart the server to apply it.\n")
	} else {
		b.WriteString(fmt.Sprintf("Set server.ingestTokenHash (or %s_SERVER_INGESTTOKENHASH) to the hash.\n", config.EnvPrefix))
	}
	b.WriteString("Store the token now; it cannot be recovered.\n")
	return b.String()
}

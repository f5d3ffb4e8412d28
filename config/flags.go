package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authvault/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-y string   DynamoDB table name
//	-g string   AWS region
//	-u string   AWS access key id
//	-p string   AWS secret access key
//	-e string   AWS base endpoint (e.g., "http://127.0.0.1:4566/")
//	-s string   token-signing HMAC secret
//	-k string   KMS key id or alias for profile-field encryption
//	-t int      token validity, hours
//	-o string   token scope
//	-m int      minimum password length
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The token
// validity flag is accepted as an integer number of hours and converted to a
// time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-y", "-g", "-u", "-p", "-e", "-s", "-k", "-t", "-o", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DynamoTable, "y", config.DynamoTable, "DynamoDB table name")
	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.AWSAccessKeyID, "u", config.AWSAccessKeyID, "AWS access key id")
	fs.StringVar(&config.AWSSecretAccessKey, "p", config.AWSSecretAccessKey, "AWS secret access key")
	fs.StringVar(&config.AWSBaseEndpoint, "e", config.AWSBaseEndpoint, "AWS base endpoint")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token-signing secret key")
	fs.StringVar(&config.KMSKeyID, "k", config.KMSKeyID, "KMS key id")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")

	fs.StringVar(&config.TokenScope, "o", config.TokenScope, "token scope")
	fs.IntVar(&config.MinPasswordLength, "m", config.MinPasswordLength, "minimum password length")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
}

package config

import (
	"fmt"
	"os"
)

// FromEnv builds a configuration from numbered environment slots:
// ACCOUNT_NAME1 / TELLOR_ADDRESS1 / TELLORVALOPER_ADDRESS1, then
// ACCOUNT_NAME2 / ..., stopping at the first slot with no variables set.
// A slot with only some of its three variables set is an error.
func FromEnv() (*Config, error) {
	var config Config

	for i := 1; ; i++ {
		name := os.Getenv(fmt.Sprintf("ACCOUNT_NAME%d", i))
		address := os.Getenv(fmt.Sprintf("TELLOR_ADDRESS%d", i))
		valoper := os.Getenv(fmt.Sprintf("TELLORVALOPER_ADDRESS%d", i))

		if name == "" && address == "" && valoper == "" {
			break
		}
		if name == "" || address == "" || valoper == "" {
			return nil, fmt.Errorf(
				"account slot %d is incomplete: ACCOUNT_NAME%d, TELLOR_ADDRESS%d and TELLORVALOPER_ADDRESS%d must all be set",
				i, i, i, i)
		}

		config.Accounts = append(config.Accounts, Account{
			Name:    name,
			Address: address,
			Valoper: valoper,
		})
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}

	return &config, nil
}

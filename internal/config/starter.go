package config

import (
	"fmt"
	"os"
)

const starterYAML = `# layerwatch configuration

# REST endpoint of a Tellor Layer node and the staking denom used for
# balance queries.
base_url: https://info.layer-node.com
denom: loya

# Directory that receives one <account-name>.csv log per account.
output_dir: .

# Seconds between successful cycles, and the shorter wait after a failed
# cycle before retrying.
interval_secs: 300
cooldown_secs: 60
request_timeout_secs: 10

# Optional local HTTP endpoint exposing /health, /status and /metrics.
ops:
  enabled: false
  host: 127.0.0.1
  port: 8090

# Accounts to monitor. Every account needs all three fields.
accounts:
  - name: main
    address: tellor1exampleaccountaddress
    valoper: tellorvaloper1exampleoperatoraddress
`

// WriteStarter writes a commented starter configuration to path. It
// refuses to overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(starterYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write starter config: %w", err)
	}
	return nil
}

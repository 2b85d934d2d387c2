package deploy

import (
	"encoding/json"
	"fmt"
	"os"
)

// nullConfig is a Vercel project config with every build setting unset,
// so vc builds the directory structure as it is.
type nullConfig struct {
	Framework       *string `json:"framework"`
	BuildCommand    *string `json:"buildCommand"`
	InstallCommand  *string `json:"installCommand"`
	OutputDirectory *string `json:"outputDirectory"`
	DevCommand      *string `json:"devCommand"`
	Public          bool    `json:"public"`
	Git             struct {
		DeploymentEnabled struct {
			Main bool `json:"main"`
		} `json:"deploymentEnabled"`
	} `json:"git"`
}

// WriteNullConfig writes the empty local Vercel config to path.
func WriteNullConfig(path string) error {
	data, err := json.MarshalIndent(nullConfig{}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

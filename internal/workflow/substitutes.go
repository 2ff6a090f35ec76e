package workflow

import (
	"fmt"

	"reelpipe/internal/config"
	"reelpipe/internal/fileutil"
	"reelpipe/internal/services"
)

var substituteFlags = map[config.StageName]string{
	config.StageBackground: "--existing-bg",
	config.StageContent:    "--existing-content",
	config.StageReels:      "--existing-reels",
}

// CheckSubstitutes verifies every substitute plan points at a usable
// artifact: a non-empty file for background and content, a non-empty
// directory for reels. It returns the first offending stage with an error
// marked services.ErrMissingArtifact.
func CheckSubstitutes(cfg *config.Config) (config.StageName, error) {
	for _, name := range config.StageOrder {
		plan := cfg.Stages.Plan(name)
		if !plan.Substitute() {
			continue
		}
		if err := checkSubstitute(name, plan.Path); err != nil {
			return name, err
		}
	}
	return "", nil
}

func checkSubstitute(name config.StageName, path string) error {
	if path == "" {
		return services.Wrap(services.ErrMissingArtifact, string(name), "substitute",
			fmt.Sprintf("stage skipped without an existing artifact; pass %s", substituteFlags[name]), nil)
	}
	var err error
	if name == config.StageReels {
		err = fileutil.CheckNonEmptyDir(path)
	} else {
		err = fileutil.CheckNonEmptyFile(path)
	}
	if err != nil {
		return services.Wrap(services.ErrMissingArtifact, string(name), "substitute",
			fmt.Sprintf("existing artifact %s is not usable", path), err)
	}
	return nil
}

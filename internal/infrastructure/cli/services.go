package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/wiring"
)

func getProjectRoot() (string, error) {
	if projectPath != "" {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return "", fmt.Errorf("invalid project path %q: %w", projectPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("project path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, fmt.Errorf("failed to build services: %w", err)
	}
	return services, nil
}

func commentAuthor() string {
	if actor := os.Getenv("USER"); actor != "" {
		return actor
	}
	return "Architect"
}

// printNotices flushes active notifications to stdout after a command.
func printNotices(services *wiring.AppServices) {
	for _, n := range services.Notifier.Active() {
		prefix := "INFO"
		switch n.Kind {
		case application.NoticeSuccess:
			prefix = "OK"
		case application.NoticeError:
			prefix = "ERROR"
		}
		fmt.Printf("[%s] %s\n", prefix, n.Message)
	}
}

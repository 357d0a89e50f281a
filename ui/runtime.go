package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"prefab-bundler/ubundle"
)

func Start(path string, bundle *ubundle.Bundle) error {
	browser, err := CreateObjectBrowser(path, bundle)
	if err != nil {
		return errors.Wrap(err, "Start error")
	}
	if err := tea.NewProgram(browser).Start(); err != nil {
		return errors.Wrap(err, "Start error running the object browser")
	}
	return nil
}

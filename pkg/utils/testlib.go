package utils

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func GetGotExpErr(title string, got interface{}, exp interface{}) error {
	if got == exp {
		return nil
	}
	return errors.New(fmt.Sprintf("%s got=%v expected=%v", title, got, exp))
}

func InitTestDir(testname string) (string, error) {
	rootDir := fmt.Sprintf("%s/goCsvStream/%s", os.TempDir(), testname)
	if err := RemoveDirectory(rootDir); err != nil {
		return "", err
	}
	if err := EnsureDir(rootDir); err != nil {
		return "", err
	}

	return rootDir, nil
}

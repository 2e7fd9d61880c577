package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2sn/starfit-server/internal/app/jobconfig"

	"gopkg.in/yaml.v3"
)

// readForm loads a submission from a YAML (or JSON) file of form field values.
// Lists become multi-valued fields. uploadPath, if set, is attached as stardata;
// otherwise the default star is used.
func readForm(path, uploadPath string) (jobconfig.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobconfig.Form{}, err
	}
	var fields map[string]interface{}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return jobconfig.Form{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	form := jobconfig.Form{Values: make(map[string][]string, len(fields)), Upload: &jobconfig.Upload{}}
	for k, v := range fields {
		switch v := v.(type) {
		case nil:
			form.Values[k] = []string{""}
		case []interface{}:
			values := make([]string, len(v))
			for i, item := range v {
				values[i] = fmt.Sprint(item)
			}
			form.Values[k] = values
		default:
			form.Values[k] = []string{fmt.Sprint(v)}
		}
	}

	if uploadPath != "" {
		content, err := os.ReadFile(uploadPath)
		if err != nil {
			return jobconfig.Form{}, err
		}
		form.Upload = &jobconfig.Upload{Filename: filepath.Base(uploadPath), Content: content}
	}
	return form, nil
}

package output

import (
	"bufio"
	"fmt"

	"gopkg.in/yaml.v2"
)

// WriteList writes one identifier per line, in the order given.
func WriteList(path string, ids []string) error {
	out, err := Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()

	bw := bufio.NewWriter(out)
	for _, id := range ids {
		if _, err = bw.WriteString(id); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err = bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Commit()
}

// WriteSummary stores a run summary as YAML. An empty path writes nothing.
func WriteSummary(path string, summary interface{}) error {
	if path == "" {
		return nil
	}
	b, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	out, err := Create(path)
	if err != nil {
		return err
	}
	defer out.Abort()
	if _, err = out.Write(b); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Commit()
}

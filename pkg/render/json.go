package render

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
)

// JSON writes snap as indented JSON.
func JSON(w io.Writer, snap model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

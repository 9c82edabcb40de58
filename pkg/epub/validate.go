package epub

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// ValidationError reports a mutated document that no longer reparses.
type ValidationError struct {
	File string
	Err  error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// ValidateModified re-parses every modified document to confirm the repairs
// produced well-formed markup. A failure here is reported separately from
// dispatch and never un-marks an issue as fixed: the repair was applied;
// whether it produced valid markup is a distinct concern.
func ValidateModified(pc *models.ProcessingContext) []ValidationError {
	var errs []ValidationError
	for _, cf := range pc.AllContentFiles() {
		if cf.Doc == nil || !cf.Doc.Modified {
			continue
		}
		data, err := cf.Doc.Serialize()
		if err != nil {
			errs = append(errs, ValidationError{File: cf.Path, Err: err})
			continue
		}
		check := etree.NewDocument()
		if err := check.ReadFromBytes(data); err != nil {
			errs = append(errs, ValidationError{File: cf.Path, Err: err})
			continue
		}
		if check.Root() == nil {
			errs = append(errs, ValidationError{File: cf.Path, Err: fmt.Errorf("no root element after repair")})
		}
	}
	return errs
}

package runner

import (
	"github.com/roach88/tckrunner/internal/aggregate"
	"github.com/roach88/tckrunner/internal/dto"
	"github.com/roach88/tckrunner/internal/model"
)

// Failure remarks.
const (
	RemarkDiffers         = "result differs from expected"
	RemarkNoExpected      = "no expected value"
	RemarkNoActual        = "no actual value"
	RemarkUnexpectedShape = "unexpected response shape"
)

// Verdict is the judgement of one evaluation response.
type Verdict struct {
	Outcome aggregate.Outcome

	// Remark explains a failure. Empty on success.
	Remark string

	// Computed is the value returned by the service, if any.
	Computed model.Value

	// Mismatch is set when both values were present and differ.
	Mismatch bool
}

// Judge applies the judging rules in order: transport error, value
// comparison, missing expected value, missing computed value, service
// errors, unexpected shape.
func Judge(expected model.Value, res *dto.ResultDTO, err error) Verdict {
	if err != nil {
		return Verdict{Outcome: aggregate.Failure, Remark: err.Error()}
	}
	if res == nil {
		return Verdict{Outcome: aggregate.Failure, Remark: RemarkUnexpectedShape}
	}
	if res.Data != nil {
		if res.Data.Value == nil {
			return Verdict{Outcome: aggregate.Failure, Remark: RemarkNoActual}
		}
		computed := dto.ToValue(res.Data.Value)
		if expected == nil {
			return Verdict{Outcome: aggregate.Failure, Remark: RemarkNoExpected, Computed: computed}
		}
		if dto.EqualDTO(dto.FromValue(expected), res.Data.Value) {
			return Verdict{Outcome: aggregate.Success, Computed: computed}
		}
		return Verdict{Outcome: aggregate.Failure, Remark: RemarkDiffers, Computed: computed, Mismatch: true}
	}
	if len(res.Errors) > 0 {
		return Verdict{Outcome: aggregate.Failure, Remark: res.ErrorDetails()}
	}
	return Verdict{Outcome: aggregate.Failure, Remark: RemarkUnexpectedShape + ": " + res.String()}
}

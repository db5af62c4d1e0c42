package credit

import "github.com/GopalDev98/creditcard-backend/internal/domain/application"

// AutoApproveThreshold: scores strictly above it are approved automatically.
const AutoApproveThreshold = 800

// Decide derives the initial status. Subjective limits always stay pending for human
// review; otherwise the score alone decides.
func Decide(score int, limit Limit) application.Status {
	if limit.Subjective {
		return application.StatusPending
	}
	if score > AutoApproveThreshold {
		return application.StatusApproved
	}
	return application.StatusRejected
}

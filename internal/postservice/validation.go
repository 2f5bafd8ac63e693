package postservice

import "github.com/sushihentaime/pressbox/internal/common"

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 500), "title", "must be at most 500 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateDatePublished(v *common.Validator, date string) {
	v.Check(date != "", "date_published", "must be provided")
}

func validateStatus(v *common.Validator, status string, permitted ...string) {
	v.Check(common.PermittedValue(status, permitted...), "status", "must be a valid status")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}

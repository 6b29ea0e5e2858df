package domain

const (
	SuffixIllegible = " ILL"
	SuffixInvalid   = " ERR"
)

const (
	AccountOK        = "ok"
	AccountIllegible = "ill"
	AccountInvalid   = "err"
)

// AccountStatus 是单个账号的校验结论，创建后不再修改。
type AccountStatus struct {
	Number     string `json:"number"`
	Recognized bool   `json:"recognized"`
	Valid      bool   `json:"valid"`
}

// Suffix 返回报告行的后缀：不可识别（ILL）优先于校验失败（ERR）。
func (s AccountStatus) Suffix() string {
	switch {
	case !s.Recognized:
		return SuffixIllegible
	case !s.Valid:
		return SuffixInvalid
	default:
		return ""
	}
}

// Kind 返回稳定的分类字符串（ok/ill/err），用于 JSON/HTML/history。
func (s AccountStatus) Kind() string {
	switch {
	case !s.Recognized:
		return AccountIllegible
	case !s.Valid:
		return AccountInvalid
	default:
		return AccountOK
	}
}

// Line 返回该账号在文本报告中的一行（不含换行）。
func (s AccountStatus) Line() string { return s.Number + s.Suffix() }

// Package validate 计算账号校验和并给出 OK / ILL / ERR 结论。
package validate

import "github.com/John-Robertt/bankocr/internal/domain"

// Modulus 是校验和的模数：校验和 ≡ 0 (mod 11) 视为合法。
const Modulus = 11

// Checksum 计算加权和：从右往左权重 1..9（即最左位权重 9）。
// 只要有一位无法识别，ok=false，此时 sum 没有意义。
func Checksum(n domain.Number) (sum int, ok bool) {
	for i, d := range n {
		v, known := d.Value()
		if !known {
			return 0, false
		}
		sum += (len(n) - i) * v
	}
	return sum, true
}

// Account 给出单个账号的结论。纯函数：同一输入总是得到相同结果。
func Account(n domain.Number) domain.AccountStatus {
	sum, recognized := Checksum(n)
	return domain.AccountStatus{
		Number:     n.String(),
		Recognized: recognized,
		Valid:      recognized && sum%Modulus == 0,
	}
}

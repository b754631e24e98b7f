package calculator

import (
	"fmt"
	"strings"

	"github.com/susu3304/partypay/internal/settlement"
)

// responseContract is appended so the model answers in the settlement
// response shape.
const responseContract = `

Respond with a single JSON object and nothing else:
{"table":[{"name":string,"share":number,"paid":number,"balance":number,"status":string}],
 "settlements":[{"from":string,"to":string,"amount":number}],
 "reasoning":string}
balance is paid minus share. Every participant gets exactly one table row.`

// BuildPrompt renders the accountant prompt for req.
func BuildPrompt(req settlement.Request) string {
	var b strings.Builder
	b.WriteString("لطفاً به عنوان یک حسابدار دقیق، دنگ مهمانی ما را محاسبه کن. اطلاعات خریدها و پرداخت‌ها به شرح زیر است:\n\n")

	b.WriteString("۱. لیست هزینه‌ها و مصرف‌کنندگان:\n")
	for _, e := range req.Expenses {
		fmt.Fprintf(&b, "[%s: مبلغ %s تومان - مصرف‌کنندگان: %s]\n", e.Item, amount(e.Amount), strings.Join(e.Consumers, "، "))
	}

	b.WriteString("\n۲. لیست پرداخت‌کنندگان (چه کسی پول خرج کرده):\n")
	for _, p := range req.Payers {
		fmt.Fprintf(&b, "[%s: %s تومان پرداخت کرده]\n", p.Name, amount(p.Amount))
	}

	b.WriteString("\n۳. لیست تمام افراد حاضر:\n")
	fmt.Fprintf(&b, "[%s]\n", strings.Join(req.Participants, "، "))

	b.WriteString("\nخروجی مورد انتظار:\nلطفاً محاسبات را گام‌به‌گام انجام بده و در نهایت یک جدول شامل ستون‌های زیر ارائه کن:\n")
	b.WriteString("۱. نام فرد\n۲. سهم کل\n۳. مبلغی که قبلاً پرداخت کرده\n۴. وضعیت نهایی\n")
	b.WriteString("در انتها، دقیقاً مشخص کن که چه کسی باید به چه کسی پول واریز کند.")
	b.WriteString(responseContract)
	return b.String()
}

func amount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

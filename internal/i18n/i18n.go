// Package i18n registers the user facing strings with x/text/message for
// English and Persian.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	English = language.English
	Persian = language.Persian
)

// Supported lists the available languages, default first.
var Supported = []language.Tag{English, Persian}

var matcher = language.NewMatcher(Supported)

var messages = map[string][2]string{
	"appName":    {"PartyPay", "پارتی‌پی"},
	"appTagline": {"Split bills, not friendships", "هزینه‌ها رو تقسیم کن، نه دوستی‌ها"},

	"participants": {"Participants", "شرکت‌کنندگان"},
	"expenses":     {"Expenses", "هزینه‌ها"},
	"payers":       {"Payers", "پرداخت‌کنندگان"},
	"results":      {"Results", "نتایج"},

	"step":                {"Step", "مرحله"},
	"participantsCount":   {"participants", "نفر"},
	"addExpense":          {"Add expense", "افزودن هزینه"},
	"itemName":            {"Item name", "نام آیتم"},
	"amount":              {"Amount", "مبلغ"},
	"consumers":           {"Consumers", "مصرف‌کنندگان"},
	"selectAll":           {"Select all", "انتخاب همه"},
	"itemNamePlaceholder": {"e.g., Pizza", "مثلاً پیتزا"},
	"payerName":           {"Payer", "پرداخت‌کننده"},
	"amountPaid":          {"Amount paid", "مبلغ پرداختی"},
	"calculate":           {"Calculate", "محاسبه کن"},
	"viewDetails":         {"View Calculation Details", "مشاهده جزئیات محاسبه"},

	"noParticipants": {"Add people who were at the party", "افرادی که در مهمانی بودند را اضافه کنید"},
	"noExpenses":     {"No expenses added yet", "هنوز هزینه‌ای اضافه نشده"},
	"noPayers":       {"No payments recorded yet", "هنوز پرداختی ثبت نشده"},
	"totalExpenses":  {"Total expenses", "مجموع هزینه‌ها"},
	"totalPaid":      {"Total paid", "مجموع پرداخت‌ها"},
	"balanceWarning": {"Total paid does not match total expenses!", "مجموع پرداخت‌ها با مجموع هزینه‌ها برابر نیست!"},
	"balanceOk":      {"Balance is correct ✓", "تراز صحیح است ✓"},

	"calculating":    {"Calculating...", "در حال محاسبه..."},
	"noResults":      {"Click calculate to see the results", "برای مشاهده نتایج روی محاسبه کلیک کنید"},
	"resultTitle":    {"Settlement Summary", "خلاصه تسویه"},
	"error":          {"An error occurred", "خطایی رخ داد"},
	"tryAgain":       {"Try again", "تلاش مجدد"},
	"person":         {"Person", "شخص"},
	"share":          {"Share (Cost)", "سهم (هزینه)"},
	"paidAmount":     {"Paid", "پرداختی"},
	"finalBalance":   {"Final Balance", "مانده نهایی"},
	"status":         {"Status", "وضعیت"},
	"settlementPlan": {"Settlement Plan", "برنامه تسویه"},

	"addParticipantsFirst": {"Please add participants first", "لطفاً ابتدا شرکت‌کنندگان را اضافه کنید"},
	"addExpensesFirst":     {"Please add at least one expense", "لطفاً حداقل یک هزینه اضافه کنید"},
	"addPayersFirst":       {"Please add at least one payment", "لطفاً حداقل یک پرداخت اضافه کنید"},

	"currency": {"", "تومان"},
	"paid":     {"paid", "پرداخت کرد"},

	"shareText":       {"Check out our party expense split!", "تقسیم هزینه‌های مهمانی ما رو ببین!"},
	"downloadSuccess": {"Image downloaded successfully!", "تصویر با موفقیت دانلود شد!"},
	"shareSuccess":    {"Shared successfully!", "با موفقیت به اشتراک گذاشته شد!"},
	"copySuccess":     {"Image copied to clipboard!", "تصویر در کلیپ‌بورد کپی شد!"},

	"sessionStarted":     {"Started a PartyPay session in this channel", "جلسه پارتی‌پی در این کانال شروع شد"},
	"sessionStopped":     {"Session closed", "جلسه بسته شد"},
	"sessionMissing":     {"No session in this channel. Use /party start", "جلسه‌ای در این کانال نیست. از /party start استفاده کنید"},
	"sessionExpired":     {"This PartyPay session expired after being idle", "جلسه پارتی‌پی به دلیل عدم فعالیت منقضی شد"},
	"invalidInput":       {"That input was not accepted", "این ورودی پذیرفته نشد"},
	"nothingChanged":     {"Nothing changed", "تغییری ایجاد نشد"},
	"stepChanged":        {"Step %d/%d: %s", "مرحله %d/%d: %s"},
	"stepUnavailable":    {"That step is not available yet", "این مرحله هنوز در دسترس نیست"},
	"busy":               {"Please wait for the current action to finish", "لطفاً تا پایان عملیات فعلی صبر کنید"},
	"languageChanged":    {"Language set to English", "زبان به فارسی تغییر کرد"},
	"consumersHint":      {"Names separated by commas, or * for everyone", "نام‌ها را با کاما جدا کنید، یا * برای همه"},
	"participantAdded":   {"Added %s", "%s اضافه شد"},
	"participantRemoved": {"Removed %s", "%s حذف شد"},
	"expenseAdded":       {"Added expense %s (%s)", "هزینه %s (%s) اضافه شد"},
	"expenseRemoved":     {"Removed expense #%d", "هزینه شماره %d حذف شد"},
	"payerAdded":         {"Recorded %s paid %s", "پرداخت %s به مبلغ %s ثبت شد"},
	"payerRemoved":       {"Removed payment #%d", "پرداخت شماره %d حذف شد"},
	"nothingToExport":    {"Calculate first to export the result", "برای خروجی گرفتن ابتدا محاسبه کنید"},
}

func init() {
	for key, m := range messages {
		message.SetString(English, key, m[0])
		message.SetString(Persian, key, m[1])
	}
}

// Parse maps a user supplied language code to a supported tag, falling back
// to English.
func Parse(code string) language.Tag {
	code = strings.TrimSpace(code)
	if code == "" {
		return English
	}
	tag, _, _ := matcher.Match(language.Make(code))
	base, _ := tag.Base()
	if pb, _ := Persian.Base(); base == pb {
		return Persian
	}
	return English
}

// Printer returns a printer for lang; it formats numbers for the locale too.
func Printer(lang language.Tag) *message.Printer {
	return message.NewPrinter(lang)
}

// T translates key. Unknown keys are returned unchanged.
func T(lang language.Tag, key string, args ...any) string {
	return Printer(lang).Sprintf(key, args...)
}

// Has reports whether key is in the catalog.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}

// Direction returns "rtl" for Persian and "ltr" otherwise.
func Direction(lang language.Tag) string {
	if Parse(lang.String()) == Persian {
		return "rtl"
	}
	return "ltr"
}

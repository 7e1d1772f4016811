package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// Button is one inline action offered with a reply. Payload is an opaque
// string echoed back through HandleButton.
type Button struct {
	Label   string
	Payload string
}

// Transport is the chat boundary the workflow replies through. The real
// messenger client lives outside the core; tests and the CLI provide their
// own implementations.
type Transport interface {
	Reply(ctx context.Context, sessionID, text string, buttons ...Button) error
}

// Button payloads.
const (
	payloadConfirmAll      = "ai_confirm_all"
	payloadSelectMode      = "ai_select_products"
	payloadCancel          = "ai_cancel"
	payloadConfirmSelected = "ai_confirm_selected"
	payloadSelectPrefix    = "ai_select_"
)

// User-facing texts, kept in the bot's original Arabic voice.
const (
	msgWelcome           = "🛍️ أهلاً بك في بوت تتبع المشتريات! أرسل اسم المنتج والسعر في رسالة واحدة، أو اسم المنتج فقط وسأسألك عن الباقي."
	msgPricePrompt       = "تم استلام اسم المنتج: %s\nالآن أدخل السعر:"
	msgInvalidPrice      = "الرجاء إدخال رقم صحيح للسعر أكبر من صفر:"
	msgNotesPrompt       = "تم استلام السعر: %s\nهل تريد إضافة ملاحظة؟ يمكنك التخطي بإرسال '.' أو 'لا' أو '-' أو '/s'"
	msgAdded             = "تم إضافة %s بسعر %s"
	msgAddedWithNotes    = "تم إضافة %s بسعر %s مع ملاحظة: %s"
	msgAddedBatch        = "✅ تمت إضافة %d منتج(ات) إلى الجدول بنجاح."
	msgCancelled         = "تم إلغاء العملية الحالية. يمكنك البدء من جديد."
	msgCouldNotParse     = "لم أتمكن من تحليل رسالتك. يرجى المحاولة مرة أخرى بصيغة مختلفة."
	msgBusy              = "لحظة من فضلك، ما زلت أعالج رسالتك السابقة."
	msgAIConfirmFooter   = "\nهل تريد إضافة هذه المنتجات إلى الجدول؟"
	msgAIConfirmHeader   = "🔎 لقد حللت رسالتك وحددت المنتجات التالية:\n\n"
	msgSelectPrompt      = "اختر المنتجات التي تريد إضافتها (انقر على المنتج للاختيار/إلغاء الاختيار):"
	msgSelectCount       = "اختر المنتجات التي تريد إضافتها (تم اختيار %d منتج(ات)):"
	msgEmptySelection    = "لم تقم باختيار أي منتجات. تم إلغاء العملية."
	msgNoRecords         = "لا توجد منتجات مسجلة."
	msgStoreError        = "حدث خطأ أثناء الوصول إلى السجل. حاول مرة أخرى لاحقاً."
	msgDeletePrompt      = "أرسل أرقام المنتجات التي تريد حذفها مفصولة بفواصل (مثال: 1,3):"
	msgDeleteResult      = "تم حذف %d منتج(ات)، وفشل حذف %d."
	msgIgnoredNumbers    = "\nتم تجاهل الأرقام غير الصالحة: %v"
	msgInvalidSelection  = "الأرقام %v غير صالحة. أرسل أرقاماً من القائمة المعروضة:"
	msgNothingToConfirm  = "لم يتم العثور على منتجات للإضافة."
	msgUseButtons        = "الرجاء استخدام الأزرار أعلاه للتأكيد أو الاختيار أو الإلغاء."
	btnConfirmAll        = "✅ تأكيد الكل"
	btnSelectMode        = "🔀 اختيار منتجات محددة"
	btnCancel            = "❌ إلغاء"
	btnConfirmSelected   = "✅ تأكيد الاختيار"
	selectedMarkerPrefix = "✅ "
)

func formatRecord(r entity.ParsedRecord) string {
	price := "؟"
	if r.Price != nil {
		price = entity.FormatPrice(*r.Price)
	}
	if r.Notes != "" {
		return fmt.Sprintf("%s - السعر: %s - ملاحظات: %s", r.Product, price, r.Notes)
	}
	return fmt.Sprintf("%s - السعر: %s", r.Product, price)
}

func formatCandidates(records []entity.ParsedRecord) string {
	var b strings.Builder
	b.WriteString(msgAIConfirmHeader)
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatRecord(r))
	}
	b.WriteString(msgAIConfirmFooter)
	return b.String()
}

func formatDisplayedList(records []entity.StoredRecord) string {
	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s - %s", i+1, r.Product, entity.FormatPrice(r.Price))
		if r.Notes != "" {
			fmt.Fprintf(&b, " (%s)", r.Notes)
		}
		fmt.Fprintf(&b, " [%s]\n", r.Date)
	}
	return b.String()
}

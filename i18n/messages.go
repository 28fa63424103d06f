package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Each key is also its own fallback text.
const (
	MsgMissingImages     = "missing_images"
	MsgInvalidSKU        = "invalid_sku"
	MsgGenericFailure    = "generic_failure"
	MsgMalformedResponse = "malformed_response"
	MsgNoImage           = "no_image"
	MsgEmptyCaption      = "empty_caption"
	MsgUnsupportedImage  = "unsupported_image"
	MsgTimeout           = "timeout"
	MsgGateRequired      = "gate_required"
	MsgInvalidCredential = "invalid_credential"
	MsgGateOpen          = "gate_open"
	MsgInvalidRequest    = "invalid_request"
	MsgUnauthorized      = "unauthorized"

	MsgAppTitle         = "app_title"
	MsgSelectKey        = "select_key"
	MsgProductDetails   = "product_details"
	MsgTitlePlaceholder = "title_placeholder"
	MsgPricePlaceholder = "price_placeholder"
	MsgSKUPlaceholder   = "sku_placeholder"
	MsgProductImage     = "product_image"
	MsgTemplateImage    = "template_image"
	MsgChangeTemplate   = "change_template"
	MsgProduce          = "produce"
	MsgLoading          = "loading"
	MsgEmptyState       = "empty_state"
	MsgPreview          = "preview"
	MsgCaption          = "caption"
	MsgDownload         = "download"
	MsgCopyCaption      = "copy_caption"
	MsgFeedTitle        = "feed_title"
	MsgDismiss          = "dismiss"
	MsgKeyPlaceholder   = "key_placeholder"
	MsgHistory          = "history"
)

var catalog = map[string]map[language.Tag]string{
	MsgMissingImages: {
		language.Arabic:  "يرجى رفع صورة المنتج والقالب أولاً.",
		language.English: "Please upload the product image and the template first.",
	},
	MsgInvalidSKU: {
		language.Arabic:  "يجب أن يكون كود المنتج 5 أرقام.",
		language.English: "The product code must be 5 digits.",
	},
	MsgGenericFailure: {
		language.Arabic:  "حدث خطأ أثناء المعالجة.",
		language.English: "Something went wrong while processing.",
	},
	MsgMalformedResponse: {
		language.Arabic:  "أرجعت خدمة الذكاء الاصطناعي استجابة غير مفهومة.",
		language.English: "The AI service returned an unreadable response.",
	},
	MsgNoImage: {
		language.Arabic:  "لم تُرجع خدمة الذكاء الاصطناعي أي صورة.",
		language.English: "The AI service did not return an image.",
	},
	MsgEmptyCaption: {
		language.Arabic:  "لم تكتب خدمة الذكاء الاصطناعي أي كابشن.",
		language.English: "The AI service produced an empty caption.",
	},
	MsgUnsupportedImage: {
		language.Arabic:  "تعذرت قراءة الصورة. استخدم PNG أو JPEG أو WebP.",
		language.English: "The image could not be read. Use PNG, JPEG or WebP.",
	},
	MsgTimeout: {
		language.Arabic:  "استغرقت العملية وقتاً أطول من المسموح.",
		language.English: "The request took too long.",
	},
	MsgGateRequired: {
		language.Arabic:  "يرجى اختيار مفتاح API مفعل لبدء إنتاج بوستات دكان العاصمة.",
		language.English: "Select an active API key to start producing Dukkan Assima posts.",
	},
	MsgInvalidCredential: {
		language.Arabic:  "مفتاح API غير صالح.",
		language.English: "The API key is not valid.",
	},
	MsgGateOpen: {
		language.Arabic:  "تم اختيار مفتاح API مسبقاً.",
		language.English: "An API key is already selected.",
	},
	MsgInvalidRequest: {
		language.Arabic:  "طلب غير صالح.",
		language.English: "Invalid request.",
	},
	MsgUnauthorized: {
		language.Arabic:  "الجلسة غير صالحة.",
		language.English: "Your session is not valid.",
	},
	MsgAppTitle: {
		language.Arabic:  "استوديو دكان",
		language.English: "Dukkan Studio",
	},
	MsgSelectKey: {
		language.Arabic:  "اختيار مفتاح API",
		language.English: "Select API key",
	},
	MsgProductDetails: {
		language.Arabic:  "تفاصيل المنتج",
		language.English: "Product details",
	},
	MsgTitlePlaceholder: {
		language.Arabic:  "عنوان المنتج (سيتم إعادة صياغته)",
		language.English: "Product title (will be rephrased)",
	},
	MsgPricePlaceholder: {
		language.Arabic:  "السعر",
		language.English: "Price",
	},
	MsgSKUPlaceholder: {
		language.Arabic:  "كود المنتج (5 أرقام)",
		language.English: "Product code (5 digits)",
	},
	MsgProductImage: {
		language.Arabic:  "صورة المنتج",
		language.English: "Product image",
	},
	MsgTemplateImage: {
		language.Arabic:  "قالب دكان العاصمة",
		language.English: "Dukkan Assima template",
	},
	MsgChangeTemplate: {
		language.Arabic:  "تغيير القالب المدمج",
		language.English: "Change the stored template",
	},
	MsgProduce: {
		language.Arabic:  "إنتاج البوستات",
		language.English: "Produce posts",
	},
	MsgLoading: {
		language.Arabic:  "يتم الآن إنتاج نسختين (FEED + STORY) وإعادة صياغة العناوين...",
		language.English: "Producing two versions (FEED + STORY) and rephrasing the headline...",
	},
	MsgEmptyState: {
		language.Arabic:  "املأ البيانات لبدء العرض المباشر",
		language.English: "Fill in the details to get started",
	},
	MsgPreview: {
		language.Arabic:  "معاينة التصاميم",
		language.English: "Design preview",
	},
	MsgCaption: {
		language.Arabic:  "الكابشن المقترح",
		language.English: "Suggested caption",
	},
	MsgDownload: {
		language.Arabic:  "تحميل الصورة",
		language.English: "Download image",
	},
	MsgCopyCaption: {
		language.Arabic:  "نسخ النص بالكامل",
		language.English: "Copy the full text",
	},
	MsgFeedTitle: {
		language.Arabic:  "بوستات دكان العاصمة",
		language.English: "Dukkan Assima posts",
	},
	MsgDismiss: {
		language.Arabic:  "إغلاق",
		language.English: "Dismiss",
	},
	MsgKeyPlaceholder: {
		language.Arabic:  "مفتاح Gemini API",
		language.English: "Gemini API key",
	},
	MsgHistory: {
		language.Arabic:  "آخر الإنتاجات",
		language.English: "Recent productions",
	},
}

func init() {
	for key, translations := range catalog {
		for tag, text := range translations {
			if err := message.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
}

// T returns the translation of key for tag.
func T(tag language.Tag, key string) string {
	return Printer(tag).Sprintf(key)
}

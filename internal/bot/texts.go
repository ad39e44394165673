package bot

// Тексты интерфейса бота (узбекский, латиница)
const (
	btnCatalog  = "🛍 Katalog"
	btnCart     = "🛒 Savat"
	btnSearch   = "🔍 Qidirish"
	btnOrders   = "📦 Buyurtmalarim"
	btnTop      = "🔥 Top mahsulotlar"
	btnPromo    = "🎟 Promokod"
	btnBack     = "⬅️ Orqaga"
	btnContact  = "📱 Kontaktni yuborish"
	btnLocation = "📍 Lokatsiyani yuborish"

	btnAdminAdd    = "➕ Mahsulot qo'shish"
	btnAdminDelete = "🗑 Mahsulot o'chirish"
	btnAdminExport = "📊 Buyurtmalar eksporti"

	msgWelcome       = "Assalomu alaykum, %s! 👋\n\nDo'konimizga xush kelibsiz. Menyudan kerakli bo'limni tanlang."
	msgMainMenu      = "Asosiy menyu:"
	msgUnknown       = "🤔 Buyruq tushunarsiz. Menyudan tanlang."
	msgRateLimited   = "⚠️ Juda ko'p xabar yuboryapsiz. Iltimos, biroz kuting."
	msgCancelled     = "Amal bekor qilindi."
	msgNoCategories  = "Katalog hozircha bo'sh."
	msgChooseCat     = "📂 Kategoriyani tanlang:"
	msgAllProducts   = "📋 Barcha mahsulotlar"
	msgEmptyCart     = "🛒 Savatingiz bo'sh."
	msgAskSearch     = "🔍 Mahsulot nomini kiriting:"
	msgNothingFound  = "Hech narsa topilmadi."
	msgAskPromo      = "🎟 Promokodni kiriting:"
	msgAskQty        = "✏️ %s uchun yangi miqdorni kiriting (0 - savatdan o'chirish):"
	msgAskName       = "👤 Ismingizni kiriting:"
	msgAskPhone      = "📱 Telefon raqamingizni yozing yoki kontaktni yuboring:"
	msgAskLocation   = "📍 Yetkazib berish manzilini yozing yoki lokatsiyani yuboring:"
	msgAskSubmit     = "✅ Ma'lumotlar qabul qilindi. Buyurtmani yuborish uchun tugmani bosing."
	msgMissingFields = "Yetishmayotgan ma'lumotlar: %s"
	msgConfirmOrder  = "Buyurtmani tasdiqlaysizmi?"
	msgOrderAccepted = "✅ Buyurtma #%d qabul qilindi!\nJami: %s\nYetkazib berish vaqti: taxminan 20 daqiqa."
	msgNoOrders      = "Sizda hali buyurtmalar yo'q."
	msgNoTop         = "Hali buyurtmalar yo'q."

	msgAdminAskName        = "🆕 Yangi mahsulot nomini kiriting:"
	msgAdminAskPrice       = "💰 Narxini kiriting (so'm):"
	msgAdminAskDescription = "📝 Tavsifini kiriting:"
	msgAdminAskImage       = "🖼 Rasm havolasini kiriting (yoki \"none\"):"
	msgAdminAskCategory    = "📂 Kategoriyasini kiriting:"
	msgAdminAskDelete      = "🗑 O'chiriladigan mahsulot nomini kiriting:"
	msgAdminAdded          = "✅ Mahsulot qo'shildi: %s, %s"
	msgAdminDeleted        = "🗑 Mahsulot o'chirildi: %s"
	msgAdminPromoUsage     = "Foydalanish: /add_promo KOD FOIZ (masalan: /add_promo SALE10 10)"
	msgAdminPromoAdded     = "🎟 Promokod %s qo'shildi: -%d%%"
	msgAdminExportEmpty    = "Eksport uchun buyurtmalar yo'q."
	msgAdminStatsTitle     = "📊 Statistika"
)

package query

// CategoryRoute redirects a category when the negative keywords contain NegativeKey.
// Both keys are lower-case substrings.
type CategoryRoute struct {
	CategoryKey string
	NegativeKey string
	Target      string
}

// FeatureEquals maps a keyword to an exact feature value.
type FeatureEquals struct {
	Keyword string
	Field   string
	Value   string
}

// FeaturePresence maps a keyword to a feature that is either present ("Var") or absent ("Yok").
type FeaturePresence struct {
	Keyword string
	Field   string
}

// Feature presence values as stored by the catalog.
const (
	PresenceYes = "Var"
	PresenceNo  = "Yok"
)

// Rules are the ordered lookup tables driving the builder. Earlier rows win.
type Rules struct {
	Routes       []CategoryRoute
	LegacyRoutes []CategoryRoute
	Equals       []FeatureEquals
	Presence     []FeaturePresence
}

// DefaultRules returns the routing and feature tables for the catalog.
func DefaultRules() Rules {
	return Rules{
		Routes: []CategoryRoute{
			{CategoryKey: "bluetooth kulaklık", NegativeKey: "kulak içi", Target: "Kulak üstü Bluetooth kulaklık"},
			{CategoryKey: "kulaklık", NegativeKey: "kulak içi", Target: "Kulak üstü Bluetooth kulaklık"},
			{CategoryKey: "bluetooth kulaklık", NegativeKey: "kulak üstü", Target: "Kulak İçi Bluetooth Kulaklık"},
			{CategoryKey: "kulaklık", NegativeKey: "kulak üstü", Target: "Kulak İçi Bluetooth Kulaklık"},
			{CategoryKey: "süpürge", NegativeKey: "dikey", Target: "Torbasız Süpürge"},
			{CategoryKey: "süpürge", NegativeKey: "dik", Target: "Torbasız Süpürge"},
			{CategoryKey: "headphone", NegativeKey: "in-ear", Target: "Over-Ear Bluetooth Headphones"},
			{CategoryKey: "headphone", NegativeKey: "over-ear", Target: "In-Ear Bluetooth Headphones"},
			{CategoryKey: "headphone", NegativeKey: "over ear", Target: "In-Ear Bluetooth Headphones"},
			{CategoryKey: "vacuum", NegativeKey: "upright", Target: "Bagless Vacuum"},
		},
		LegacyRoutes: []CategoryRoute{
			{CategoryKey: "süpürge", NegativeKey: "dikey", Target: "Torbasız Süpürge"},
			{CategoryKey: "süpürge", NegativeKey: "dik", Target: "Torbasız Süpürge"},
			{CategoryKey: "kulaklık", NegativeKey: "kulaküstü", Target: "Kulak İçi Bluetooth Kulaklık"},
			{CategoryKey: "kulaklık", NegativeKey: "büyük", Target: "Kulak İçi Bluetooth Kulaklık"},
			{CategoryKey: "telefon", NegativeKey: "android", Target: "iPhone IOS Cep Telefonları"},
			{CategoryKey: "telefon", NegativeKey: "iphone", Target: "Android Cep Telefonu"},
			{CategoryKey: "phone", NegativeKey: "android", Target: "iPhone iOS Phones"},
			{CategoryKey: "phone", NegativeKey: "iphone", Target: "Android Phones"},
		},
		Equals: []FeatureEquals{
			{Keyword: "kulak içi", Field: "Kulaklık Tipi", Value: "Kulak İçi"},
			{Keyword: "kulak ici", Field: "Kulaklık Tipi", Value: "Kulak İçi"},
			{Keyword: "kulakiçi", Field: "Kulaklık Tipi", Value: "Kulak İçi"},
			{Keyword: "kulak üstü", Field: "Kulaklık Tipi", Value: "Kulak Üstü"},
			{Keyword: "kulak ustu", Field: "Kulaklık Tipi", Value: "Kulak Üstü"},
			{Keyword: "over ear", Field: "Kulaklık Tipi", Value: "Kulak Üstü"},
			{Keyword: "on ear", Field: "Kulaklık Tipi", Value: "Kulak Üstü"},
			{Keyword: "no frost", Field: "Dondurucu Özelliği", Value: "No Frost"},
			{Keyword: "nofrost", Field: "Dondurucu Özelliği", Value: "No Frost"},
			{Keyword: "less frost", Field: "Dondurucu Özelliği", Value: "Less Frost"},
			{Keyword: "statik", Field: "Dondurucu Özelliği", Value: "Statik"},
			{Keyword: "çift kapılı", Field: "Tip", Value: "Çift Kapılı"},
			{Keyword: "tek kapılı", Field: "Tip", Value: "Tek Kapılı"},
		},
		Presence: []FeaturePresence{
			{Keyword: "gürültü engelleme", Field: "Aktif Gürültü Önleme (ANC)"},
			{Keyword: "anc", Field: "Aktif Gürültü Önleme (ANC)"},
			{Keyword: "aktif gürültü önleme", Field: "Aktif Gürültü Önleme (ANC)"},
			{Keyword: "kablosuz", Field: "Bağlantı Türü"},
			{Keyword: "bluetooth", Field: "Bağlantı Türü"},
			{Keyword: "pilli", Field: "Güç Kaynağı"},
			{Keyword: "şarjlı", Field: "Güç Kaynağı"},
			{Keyword: "su geçirmez", Field: "Su Geçirmezlik"},
			{Keyword: "toz geçirmez", Field: "Toz Geçirmezlik"},
		},
	}
}

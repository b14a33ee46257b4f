package models

// Country is the fixed-shape country record exposed to callers. The raw
// profile payload carries several historical field spellings; normalization
// happens once at the store boundary.
type Country struct {
	NameAr string `json:"name_ar,omitempty"`
	NameEn string `json:"name_en,omitempty"`
	Name   string `json:"name,omitempty"`
	Code   string `json:"code,omitempty"`
}

// NormalizedProfile is the display shape handed to the UI layer.
type NormalizedProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Country     Country  `json:"country"`
	Photos      []string `json:"photos"`
}

// NormalizeProfile flattens a raw profileData payload into a fixed shape.
// Country may arrive as an object with any of the historical name fields or
// as a bare string; photos are filtered to non-empty strings.
func NormalizeProfile(id string, profileData map[string]any) NormalizedProfile {
	p := NormalizedProfile{
		ID:          id,
		DisplayName: docString(profileData, "displayName"),
		Age:         docInt(profileData, "age"),
		Bio:         docString(profileData, "bio"),
		Photos:      filterPhotos(profileData["photos"]),
	}

	switch country := profileData["country"].(type) {
	case map[string]any:
		p.Country = Country{
			NameAr: docString(country, "nameAr"),
			NameEn: docString(country, "nameEn"),
			Name:   docString(country, "countryName"),
			Code:   docString(country, "code"),
		}
		if p.Country.Name == "" {
			p.Country.Name = p.Country.NameEn
		}
	case string:
		p.Country = Country{Name: country}
	}
	return p
}

// ProfileComplete reports whether the payload is displayable at all.
func ProfileComplete(profileData map[string]any) bool {
	return profileData != nil && docBool(profileData, "profileCompleted")
}

func filterPhotos(v any) []string {
	var out []string
	raw, _ := v.([]any)
	if raw == nil {
		if typed, ok := v.([]string); ok {
			for _, s := range typed {
				if s != "" {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}
	for _, e := range raw {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

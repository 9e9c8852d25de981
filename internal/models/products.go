package models

import "strings"

// Product is an entry of the known-category table: the label chunks are
// filed under and the identifier of the folder its manuals live in.
type Product struct {
	Name     string
	FolderID string
}

// Products is ordered; MatchProduct returns the first hit.
var Products = []Product{
	{Name: "Compra Dolares", FolderID: "1ghsO_g7jWbz5Ar8QKG23ahNCdkh0H-Sp"},
	{Name: "DAP", FolderID: "1x26utz9YuckkshXYjlVnVDB74LTI1N6g"},
	{Name: "Tarjetas de Crédito", FolderID: "1e11pamT4-KWlfFNk_-pNu-gD3fkVL1cQ"},
	{Name: "APP Empresa", FolderID: "1oYS5pKwBnHbLN6_59GvzDRqPXXQwxcN1"},
	{Name: "Venta Dolares", FolderID: "1gtgMNwGAChBSlMiEdipkn7eGR-mrSzOQ"},
	{Name: "Reset y Recuperacion Clave", FolderID: "1SR5QWqB8Jwjg0OJcx1HYc3E-WxMUUhUy"},
	{Name: "Datos Clientes", FolderID: "12l4rRlSx8ctUVN4LJ95Y84JQIXSGdTi3"},
	{Name: "abonos Masivos", FolderID: "1wvPElP7cGRKx80XUDBsB8B4XJBkCxTQC"},
	{Name: "Crédito Comercial FOGAPE", FolderID: "1Ae00CARbtXAboWcnCMpZA9XZBeQvAKTN"},
	{Name: "Onboarding Empresas", FolderID: "1GzJmx0RzVwZ6a2vmvAzc4_1uhduBiyu4"},
	{Name: "Aumento LAC", FolderID: "1NjPRcQQHvrNAk1VEQaRZWVJvivo4Y_Li"},
	{Name: "Manual Boton de Pago", FolderID: "1URPsJhGRd8u6I_T9tkrj2Tco-jroXpXu"},
	{Name: "Consulta Credito Consumo", FolderID: "1l1RcItbnFiQTB-Bbup6wcQL6ZsaqPY-8"},
	{Name: "InterPass", FolderID: "1GAbCNIQLxsuu0879trdVbO0LaHP5r8gY"},
	{Name: "Credito Comercial", FolderID: "1Bz_Snfy0qy_RSDxM_gb-d6CnXTnADqA_"},
	{Name: "Pago de Linea", FolderID: "1iBXnmHMtFZELDuJIx7JA7QK3YNvX2V67"},
	{Name: "Consulta Credito Hipotecario", FolderID: "1XKZ_u01dRFYzCNfnF9dMK239H280qXZ4"},
	{Name: "Pac Multibanco", FolderID: "1bLrR6ihm-n87BLa-PZHro7fw5nLgDmfA"},
	{Name: "LBTR", FolderID: "10YaJIXypa3mztrl7i20ta6qtCJmlQYBh"},
	{Name: "Cartola FFMM", FolderID: "1qRsY5jnky_rVKNC0kQc8MC-q-Lol2ACF"},
}

// MatchProduct finds the known category for a free-form product hint using
// case-insensitive substring containment in either direction. It is a
// best-effort match: overlapping names (e.g. "Credito Comercial" and
// "Crédito Comercial FOGAPE") resolve to whichever comes first.
func MatchProduct(hint string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return "", false
	}
	for _, p := range Products {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, h) || strings.Contains(h, name) {
			return p.Name, true
		}
	}
	return "", false
}

// CategoryForFolder maps a folder name or identifier to its product label.
// Unknown folders keep their own name.
func CategoryForFolder(folder string) string {
	for _, p := range Products {
		if p.FolderID == folder {
			return p.Name
		}
	}
	return folder
}

// ResolveCategory applies the precedence explicit > folder > "default".
func ResolveCategory(explicit, folder string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	if f := strings.TrimSpace(folder); f != "" && f != "." && f != "/" {
		return CategoryForFolder(f)
	}
	return DefaultCategory
}

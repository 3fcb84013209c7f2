package utils

import (
	"fmt"
	"math/rand"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

var givenNames = map[string][]string{
	"VN": {"An", "Binh", "Chi", "Dung", "Hoa", "Lan", "Minh", "Nam", "Phuong", "Thao"},
	"ID": {"Agus", "Budi", "Dewi", "Eka", "Indah", "Putri", "Rizki", "Siti", "Wahyu", "Yusuf"},
	"PH": {"Angel", "Carlo", "Jasmine", "Joy", "Mark", "Maria", "Paolo", "Rose", "Ruel", "Trisha"},
	"MM": {"Aung", "Ei", "Hla", "Khin", "Kyaw", "Mya", "Nandar", "Thandar", "Thet", "Zaw"},
	"NP": {"Anil", "Bikash", "Gita", "Kiran", "Manoj", "Nisha", "Puja", "Ramesh", "Sita", "Suman"},
}

var familyNames = map[string][]string{
	"VN": {"Nguyen", "Tran", "Le", "Pham", "Hoang"},
	"ID": {"Santoso", "Wijaya", "Saputra", "Hidayat", "Kurniawan"},
	"PH": {"Santos", "Reyes", "Cruz", "Bautista", "Garcia"},
	"MM": {"Win", "Oo", "Myint", "Htun", "Naing"},
	"NP": {"Shrestha", "Gurung", "Tamang", "Rai", "Thapa"},
}

var nationalities = []string{"VN", "ID", "PH", "MM", "NP"}

var skills = []string{"harvest", "packing", "forklift", "sorting", "greenhouse", "livestock", "driving"}

var regions = []string{"hokkaido", "tohoku", "kanto", "chubu", "kinki", "chugoku", "shikoku", "kyushu"}

var farmKinds = []string{"Farm", "Orchard", "Greenhouse", "Dairy", "Packing Center"}

var divisions = []domain.BusinessDivision{
	domain.DivisionDispatch,
	domain.DivisionSubcontracting,
	domain.DivisionSupport,
}

func GenerateRandomNationality() string {
	return nationalities[rand.Intn(len(nationalities))]
}

func GenerateRandomName(nationality string) string {
	given, ok := givenNames[nationality]
	if !ok {
		nationality = GenerateRandomNationality()
		given = givenNames[nationality]
	}
	family := familyNames[nationality]
	return given[rand.Intn(len(given))] + " " + family[rand.Intn(len(family))]
}

var letters = []rune("abcdefghijklmnopqrstuvwxyz")
var digits = "0123456789"

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// GenerateRandomSubset returns a Fisher-Yates shuffled subset of length [1, len(arr)]
func GenerateRandomSubset[T any](arr []T) []T {
	if len(arr) == 0 {
		return nil
	}
	arrCopy := append([]T{}, arr...) // leave arr untouched

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

func GenerateRandomWorker(id string) domain.Worker {
	nationality := GenerateRandomNationality()
	return domain.Worker{
		ID:          id,
		DisplayName: GenerateRandomName(nationality),
		Nationality: nationality,
		Skills:      GenerateRandomSubset(skills),
	}
}

func GenerateRandomClientSite(id string) domain.ClientSite {
	region := regions[rand.Intn(len(regions))]
	return domain.ClientSite{
		ID:          id,
		DisplayName: fmt.Sprintf("%s %s %s", region, farmKinds[rand.Intn(len(farmKinds))], GenerateRandomID(0, 3)),
		Region:      region,
		Division:    divisions[rand.Intn(len(divisions))],
	}
}

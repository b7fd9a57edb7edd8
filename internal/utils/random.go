package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.IntN(len(commonSurnames))]
	nameLength := rand.IntN(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.IntN(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.IntN(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.IntN(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.IntN(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleViewer
	if rand.IntN(3) == 0 {
		role = domain.RoleCoordinator
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.IntN(len(letters))]
	}
	return string(random_password)
}

var alphanumerics = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// GenerateRandomToken 生成只包含小写字母和数字的随机串，可以直接放在 URL 和 redis key 中
func GenerateRandomToken(length int) string {
	token := make([]rune, length)
	for i := range token {
		token[i] = alphanumerics[rand.IntN(len(alphanumerics))]
	}
	return string(token)
}

// GenerateSiteCode 根据需求点名称生成编码
// 汉字转为拼音，英文和数字转为小写，其余字符作为分隔符，例如 "Posko 临时安置点" -> "posko-lin-shi-an-zhi-dian"
func GenerateSiteCode(name string) string {
	parts := []string{}
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			parts = append(parts, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			parts = append(parts, pinyin.LazyConvert(string(r), nil)...)
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(parts, "-")
}

var sitePlaces = []string{
	"东湖", "西山", "南港", "北塘", "青石", "白沙", "长岭", "清河", "枫林", "石桥",
}
var siteKinds = []string{
	"小学安置点", "村委会", "体育馆", "卫生院", "物资中转站", "临时帐篷区",
}

func GenerateRandomSiteName() string {
	return sitePlaces[rand.IntN(len(sitePlaces))] + siteKinds[rand.IntN(len(siteKinds))]
}

// GenerateRandomScenario 随机生成一个场景，资源总量约为总需求的一半到一倍，保证资源是稀缺的
func GenerateRandomScenario() *domain.Scenario {
	sc := &domain.Scenario{
		Name: "场景" + GenerateRandomToken(6),
	}

	sitesNum := rand.IntN(6) + 2
	usedNames := map[string]bool{}
	for len(sc.Sites) < sitesNum {
		name := GenerateRandomSiteName()
		if usedNames[name] {
			continue
		}
		usedNames[name] = true

		sc.Sites = append(sc.Sites, domain.Site{
			Name:               name,
			Code:               GenerateSiteCode(name),
			RequiredVolunteers: rand.IntN(20) + 1,
			RequiredTrucks:     rand.IntN(5) + 1,
			RequiredPackages:   (rand.IntN(20) + 1) * 10,
		})
	}

	for _, site := range sc.Sites {
		sc.Pool.TotalVolunteers += site.RequiredVolunteers
		sc.Pool.TotalTrucks += site.RequiredTrucks
		sc.Pool.TotalPackages += site.RequiredPackages
	}
	sc.Pool.TotalVolunteers = scarce(sc.Pool.TotalVolunteers)
	sc.Pool.TotalTrucks = scarce(sc.Pool.TotalTrucks)
	sc.Pool.TotalPackages = scarce(sc.Pool.TotalPackages)
	sc.Description = describeScenario(sc)

	return sc
}

func scarce(total int) int {
	return total/2 + rand.IntN(total/2+1)
}

func describeScenario(sc *domain.Scenario) string {
	return fmt.Sprintf("共 %d 个需求点，志愿者 %d 人，卡车 %d 辆，物资包 %d 个", len(sc.Sites), sc.Pool.TotalVolunteers, sc.Pool.TotalTrucks, sc.Pool.TotalPackages)
}
